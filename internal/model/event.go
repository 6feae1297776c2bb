package model

import "time"

// Event is a scheduled occurrence at a venue. It corresponds to a row
// in the `events` table. MaxAssistance never exceeds the capacity of
// the venue referenced by VenueID.
type Event struct {
	ID                   uint64    `json:"id"`
	Name                 string    `json:"name"`
	Description          string    `json:"description"`
	VenueID              uint64    `json:"id_event_location"`
	StartDate            time.Time `json:"start_date"`
	DurationInMinutes    int       `json:"duration_in_minutes"`
	Price                float64   `json:"price"`
	EnabledForEnrollment bool      `json:"enabled_for_enrollment"`
	MaxAssistance        int       `json:"max_assistance"`
	CreatorUserID        uint64    `json:"id_creator_user"`
	Tags                 []string  `json:"tags"`
}

// EventInput carries the client supplied fields of an event on create
// and update.
type EventInput struct {
	Name                 string
	Description          string
	VenueID              uint64
	StartDate            time.Time
	DurationInMinutes    int
	Price                float64
	EnabledForEnrollment bool
	MaxAssistance        int
	Tags                 []string
}

// EventFilter narrows an event listing. Zero values disable a filter.
type EventFilter struct {
	Name      string     // case-insensitive substring of the event name
	StartDate *time.Time // calendar date (UTC) the event starts on
	Tag       string     // case-insensitive substring of any tag name
}

// EventListItem is the flattened projection returned by event listings.
type EventListItem struct {
	ID                   uint64       `json:"id"`
	Name                 string       `json:"name"`
	Description          string       `json:"description"`
	StartDate            time.Time    `json:"start_date"`
	DurationInMinutes    int          `json:"duration_in_minutes"`
	Price                float64      `json:"price"`
	EnabledForEnrollment bool         `json:"enabled_for_enrollment"`
	MaxAssistance        int          `json:"max_assistance"`
	CreatorUser          UserSummary  `json:"creator_user"`
	EventLocation        VenueSummary `json:"event_location"`
	Tags                 []string     `json:"tags"`
}

// LocationDetail nests a location with its province.
type LocationDetail struct {
	ID        uint64   `json:"id"`
	Name      string   `json:"name"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Province  Province `json:"province"`
}

// VenueDetail is the venue as shown in an event detail, including the
// optional location chain.
type VenueDetail struct {
	ID          uint64          `json:"id"`
	Name        string          `json:"name"`
	FullAddress string          `json:"full_address"`
	MaxCapacity int             `json:"max_capacity"`
	Latitude    *float64        `json:"latitude"`
	Longitude   *float64        `json:"longitude"`
	Location    *LocationDetail `json:"location"`
}

// EventDetail is the deep projection of a single event.
type EventDetail struct {
	ID                   uint64      `json:"id"`
	Name                 string      `json:"name"`
	Description          string      `json:"description"`
	StartDate            time.Time   `json:"start_date"`
	DurationInMinutes    int         `json:"duration_in_minutes"`
	Price                float64     `json:"price"`
	EnabledForEnrollment bool        `json:"enabled_for_enrollment"`
	MaxAssistance        int         `json:"max_assistance"`
	EventLocation        VenueDetail `json:"event_location"`
	CreatorUser          UserSummary `json:"creator_user"`
	Tags                 []string    `json:"tags"`
}

// Enrollment records that a user intends to attend an event. The pair
// (EventID, UserID) is unique.
type Enrollment struct {
	EventID              uint64    `json:"id_event"`
	UserID               uint64    `json:"id_user"`
	RegistrationDateTime time.Time `json:"registration_date_time"`
	EventName            string    `json:"-"`
}
