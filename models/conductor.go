package models

// Conductor roles
const (
	RoleOrganizer = "Organizer"
	RoleVolunteer = "Volunteer"
	RoleReferee   = "Referee"
	RoleTechnical = "Technical"
)

var ConductorRoles = []string{RoleOrganizer, RoleVolunteer, RoleReferee, RoleTechnical}

// Conductor is a staff member running the event.
type Conductor struct {
	ID     string `json:"id" gorm:"primaryKey"`
	Name   string `json:"name" gorm:"not null"`
	Phone  string `json:"phone" gorm:"not null"`
	RollNo string `json:"rollNo" gorm:"column:roll_no"`
	Role   string `json:"role" gorm:"type:varchar(16);not null;index"`

	Timestamps
}
