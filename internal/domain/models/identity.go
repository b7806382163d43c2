package models

// Identity is the authenticated traveler's profile as the identity service reports it.
type Identity struct {
	UserID  int64  `json:"id"`
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address,omitempty"`
}

// User mirrors the users table.
type User struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Surname      string `json:"surname"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Address      string `json:"address,omitempty"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"`
	Status       string `json:"status"`
}

func (u User) Identity() Identity {
	return Identity{
		UserID:  u.ID,
		Name:    u.Name,
		Surname: u.Surname,
		Phone:   u.Phone,
		Email:   u.Email,
		Address: u.Address,
	}
}
