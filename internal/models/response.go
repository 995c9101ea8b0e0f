package models

import "time"

// Response categories a guest party can answer with. Stored as plain text;
// validation is advisory and performed by the handlers, not the store.
const (
	ResponseYes   = "yes"
	ResponseNo    = "no"
	ResponseMaybe = "maybe"
)

// GuestSlots is the number of companion slots per RSVP record.
const GuestSlots = 4

// Response represents one guest party's RSVP record
type Response struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Response  string    `json:"response"`
	Guest1    *string   `json:"guest1"`
	Guest2    *string   `json:"guest2"`
	Guest3    *string   `json:"guest3"`
	Guest4    *string   `json:"guest4"`
	Note      *string   `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}

// Guests returns the companion slots as an array for uniform handling
func (r *Response) Guests() [GuestSlots]*string {
	return [GuestSlots]*string{r.Guest1, r.Guest2, r.Guest3, r.Guest4}
}

// SetGuests assigns the companion slots from an array
func (r *Response) SetGuests(guests [GuestSlots]*string) {
	r.Guest1 = guests[0]
	r.Guest2 = guests[1]
	r.Guest3 = guests[2]
	r.Guest4 = guests[3]
}

// SubmitRequest represents the public RSVP form payload. Companion names
// arrive as separate first/last pairs and are joined server-side.
type SubmitRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Response  string `json:"response"`

	Guest1First string `json:"guest1_first"`
	Guest1Last  string `json:"guest1_last"`
	Guest2First string `json:"guest2_first"`
	Guest2Last  string `json:"guest2_last"`
	Guest3First string `json:"guest3_first"`
	Guest3Last  string `json:"guest3_last"`
	Guest4First string `json:"guest4_first"`
	Guest4Last  string `json:"guest4_last"`

	Note string `json:"note"`
}

// GuestPairs returns the companion name pairs in slot order
func (r *SubmitRequest) GuestPairs() [GuestSlots][2]string {
	return [GuestSlots][2]string{
		{r.Guest1First, r.Guest1Last},
		{r.Guest2First, r.Guest2Last},
		{r.Guest3First, r.Guest3Last},
		{r.Guest4First, r.Guest4Last},
	}
}

// UpsertRequest represents the admin create/update payload: a full record
// with companion names already joined.
type UpsertRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Response  string `json:"response"`
	Guest1    string `json:"guest1"`
	Guest2    string `json:"guest2"`
	Guest3    string `json:"guest3"`
	Guest4    string `json:"guest4"`
	Note      string `json:"note"`
}

// SubmitResponse is returned on successful creation
type SubmitResponse struct {
	Success bool  `json:"success"`
	ID      int64 `json:"id"`
}

// UpdateResponse is returned by the admin update endpoint
type UpdateResponse struct {
	Success bool  `json:"success"`
	Changes int64 `json:"changes"`
}

// DeleteResponse is returned by the admin delete endpoint
type DeleteResponse struct {
	Success bool `json:"success"`
}

// Stats is the aggregate view the dashboard polls
type Stats struct {
	Yes            int `json:"yes"`
	No             int `json:"no"`
	Maybe          int `json:"maybe"`
	Guests         int `json:"guests"`
	TotalAttending int `json:"totalAttending"`
}
