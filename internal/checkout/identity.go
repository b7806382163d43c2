package checkout

import (
	"strings"

	"travelcheckout/internal/domain/models"
)

// IdentityField names one traveler identity field.
type IdentityField string

const (
	FieldName    IdentityField = "name"
	FieldSurname IdentityField = "surname"
	FieldPhone   IdentityField = "phone"
	FieldEmail   IdentityField = "email"
	FieldAddress IdentityField = "address"
)

// AllIdentityFields in display order.
var AllIdentityFields = []IdentityField{FieldName, FieldSurname, FieldPhone, FieldEmail, FieldAddress}

func ParseIdentityField(s string) (IdentityField, bool) {
	f := IdentityField(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllIdentityFields {
		if f == known {
			return f, true
		}
	}
	return "", false
}

// Field is a traveler value; Locked fields came from an authenticated profile.
type Field struct {
	Value  string `json:"value"`
	Locked bool   `json:"locked"`
}

// TravelerIdentity is the identity collected on step 2.
type TravelerIdentity struct {
	Name    Field `json:"name"`
	Surname Field `json:"surname"`
	Phone   Field `json:"phone"`
	Email   Field `json:"email"`
	Address Field `json:"address"`
}

func (t TravelerIdentity) Get(f IdentityField) Field {
	switch f {
	case FieldName:
		return t.Name
	case FieldSurname:
		return t.Surname
	case FieldPhone:
		return t.Phone
	case FieldEmail:
		return t.Email
	case FieldAddress:
		return t.Address
	}
	return Field{}
}

func (t *TravelerIdentity) put(f IdentityField, v Field) {
	switch f {
	case FieldName:
		t.Name = v
	case FieldSurname:
		t.Surname = v
	case FieldPhone:
		t.Phone = v
	case FieldEmail:
		t.Email = v
	case FieldAddress:
		t.Address = v
	}
}

// lockFrom copies every non-empty profile value and locks it. Fields the profile lacks
// stay editable.
func (t *TravelerIdentity) lockFrom(id models.Identity) {
	values := map[IdentityField]string{
		FieldName:    id.Name,
		FieldSurname: id.Surname,
		FieldPhone:   id.Phone,
		FieldEmail:   id.Email,
		FieldAddress: id.Address,
	}
	for _, f := range AllIdentityFields {
		if t.Get(f).Locked {
			continue
		}
		v := strings.TrimSpace(values[f])
		if v == "" {
			continue
		}
		t.put(f, Field{Value: v, Locked: true})
	}
}

// Missing lists the required fields that are still empty.
func (t TravelerIdentity) Missing(required []IdentityField) []IdentityField {
	var out []IdentityField
	for _, f := range required {
		if strings.TrimSpace(t.Get(f).Value) == "" {
			out = append(out, f)
		}
	}
	return out
}
