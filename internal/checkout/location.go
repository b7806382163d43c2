package checkout

import (
	"net/url"
	"strconv"
	"strings"

	"travelcheckout/internal/domain"
	"travelcheckout/internal/domain/models"
)

// Client paths of the two checkout pages.
const (
	RoomPath = "/checkout/room"
	TourPath = "/checkout/tour/"
)

// Seed is what a location says about a draft.
type Seed struct {
	Kind     domain.SubjectKind
	Refs     models.ExternalRefs
	Schedule models.Schedule
	Party    models.Party
	Step     Step
}

// ParseLocation reads a checkout location. Room locations carry the full seed in the
// query; tour locations only name the tour.
func ParseLocation(loc string) (Seed, error) {
	u, err := url.Parse(strings.TrimSpace(loc))
	if err != nil {
		return Seed{}, domain.ValidationError{Field: "location", Msg: "malformed location", Err: err}
	}
	q := u.Query()
	seed := Seed{Party: models.Party{}, Step: StepDetails}

	switch {
	case u.Path == RoomPath:
		seed.Kind = domain.SubjectRoom
		seed.Refs = models.ExternalRefs{HotelID: q.Get("hotelId"), RoomID: q.Get("roomId")}
		seed.Schedule = models.Schedule{Date: q.Get("date"), Nights: atoi(q.Get("nights"))}
		if g := atoi(q.Get("guests")); g > 0 {
			seed.Party[CategoryGuests] = g
		}
	case strings.HasPrefix(u.Path, TourPath):
		id, _ := url.PathUnescape(strings.TrimPrefix(u.Path, TourPath))
		seed.Kind = domain.SubjectTour
		seed.Refs = models.ExternalRefs{TourID: strings.Trim(id, "/")}
	default:
		return Seed{}, domain.ValidationError{Field: "location", Msg: "not a checkout location: " + u.Path}
	}
	if seed.Refs.Empty(seed.Kind) {
		return Seed{}, domain.ValidationError{Field: "refs", Msg: "location is missing the booking subject"}
	}
	if st := Step(atoi(q.Get("step"))); st >= StepDetails && st <= StepIdentity {
		// never resume straight into payment
		seed.Step = st
	}
	return seed, nil
}

func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
