package entities

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// ID is a server-issued identifier. The API sends ids either as strings
// (`_id`) or as numbers (`id`); both normalise to the string form.
type ID string

// UnmarshalJSON accepts a JSON string, a JSON number or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or a number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string {
	return string(id)
}

// IsZero reports whether the id is unset.
func (id ID) IsZero() bool {
	return id == ""
}

// User is the profile returned alongside a token on login. Fields the client
// does not use are kept in Extra so the stored record holds the whole profile.
type User struct {
	ID    ID                         `json:"id"`
	Name  string                     `json:"name,omitempty"`
	Email string                     `json:"email,omitempty"`
	Extra map[string]json.RawMessage `json:"-"`
}

// UnmarshalJSON accepts both `id` and `_id`.
func (u *User) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	var raw struct {
		ID      ID     `json:"id"`
		MongoID ID     `json:"_id"`
		Name    string `json:"name"`
		Email   string `json:"email"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	u.ID = raw.ID
	if u.ID.IsZero() {
		u.ID = raw.MongoID
	}
	u.Name = raw.Name
	u.Email = raw.Email

	for _, k := range []string{"id", "_id", "name", "email"} {
		delete(fields, k)
	}
	u.Extra = nil
	if len(fields) > 0 {
		u.Extra = fields
	}
	return nil
}

// MarshalJSON writes the known fields over Extra.
func (u User) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(u.Extra)+3)
	for k, v := range u.Extra {
		out[k] = v
	}
	out["id"] = u.ID
	if u.Name != "" {
		out["name"] = u.Name
	}
	if u.Email != "" {
		out["email"] = u.Email
	}
	return json.Marshal(out)
}

// DisplayName is the name shown on the dashboard.
func (u *User) DisplayName() string {
	if u == nil || u.Name == "" {
		return "User"
	}
	return u.Name
}

// Session is the locally persisted authentication record.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// LocationLevel is one level of the State > District > City hierarchy.
type LocationLevel int

const (
	LevelState LocationLevel = iota
	LevelDistrict
	LevelCity
)

func (l LocationLevel) String() string {
	switch l {
	case LevelState:
		return "state"
	case LevelDistrict:
		return "district"
	case LevelCity:
		return "city"
	default:
		return "level(" + strconv.Itoa(int(l)) + ")"
	}
}

// Parent returns the level above l. States have no parent.
func (l LocationLevel) Parent() (LocationLevel, bool) {
	if l <= LevelState || l > LevelCity {
		return 0, false
	}
	return l - 1, true
}

// LocationNode is a selectable State, District or City.
type LocationNode struct {
	ID   ID     `json:"_id" validate:"required"`
	Name string `json:"name" validate:"required"`
}

// UnmarshalJSON accepts both `_id` and `id`.
func (n *LocationNode) UnmarshalJSON(data []byte) error {
	var raw struct {
		MongoID ID     `json:"_id"`
		ID      ID     `json:"id"`
		Name    string `json:"name"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	n.ID = raw.MongoID
	if n.ID.IsZero() {
		n.ID = raw.ID
	}
	n.Name = raw.Name
	return nil
}

// LocationRef is a task's reference to a location. The list endpoint may
// send a bare id or a populated {_id, name} object.
type LocationRef struct {
	ID   ID     `json:"_id"`
	Name string `json:"name,omitempty"`
}

// UnmarshalJSON accepts a string id, a populated object or null.
func (r *LocationRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = LocationRef{}
		return nil
	}
	if data[0] != '{' {
		var id ID
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*r = LocationRef{ID: id}
		return nil
	}
	var node LocationNode
	if err := json.Unmarshal(data, &node); err != nil {
		return err
	}
	*r = LocationRef{ID: node.ID, Name: node.Name}
	return nil
}

// Label is the text shown for the reference, "N/A" when unpopulated.
func (r LocationRef) Label() string {
	if r.Name != "" {
		return r.Name
	}
	return "N/A"
}

// TaskStatus is the server-side workflow status of a task.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// Task is the client's transient copy of a server-owned task.
type Task struct {
	ID          ID          `json:"_id" validate:"required"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	State       LocationRef `json:"state"`
	District    LocationRef `json:"district"`
	City        LocationRef `json:"city"`
	Image       string      `json:"image,omitempty"`
	Status      TaskStatus  `json:"taskStatus,omitempty"`
}

type taskAlias Task

// UnmarshalJSON accepts `id` for `_id` and `status` for `taskStatus`.
func (t *Task) UnmarshalJSON(data []byte) error {
	var raw struct {
		taskAlias
		AltID     ID         `json:"id"`
		AltStatus TaskStatus `json:"status"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = Task(raw.taskAlias)
	if t.ID.IsZero() {
		t.ID = raw.AltID
	}
	if t.Status == "" {
		t.Status = raw.AltStatus
	}
	return nil
}

// Account is the server-side user record.
type Account struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Name         string    `json:"name" db:"name"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Profile strips server-only fields.
func (a *Account) Profile() User {
	return User{ID: ID(a.ID), Name: a.Name, Email: a.Email}
}

// Location is the server-side location record.
type Location struct {
	ID       string        `db:"id"`
	ParentID string        `db:"parent_id"`
	Level    LocationLevel `db:"level"`
	Name     string        `db:"name"`
}

// Node converts the record to its wire form.
func (l *Location) Node() LocationNode {
	return LocationNode{ID: ID(l.ID), Name: l.Name}
}

// StoredTask is the server-side task record.
type StoredTask struct {
	ID          string     `db:"id"`
	OwnerID     string     `db:"owner_id"`
	Title       string     `db:"title"`
	Description string     `db:"description"`
	StateID     string     `db:"state_id"`
	DistrictID  string     `db:"district_id"`
	CityID      string     `db:"city_id"`
	Image       string     `db:"image"`
	Status      TaskStatus `db:"status"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}
