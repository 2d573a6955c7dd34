package domain

// Role labels. The set is open; only RoleAdmin carries extra rights.
const (
	RoleUser    = "user"    // Default role
	RoleStudent = "student" // Takes exams
	RoleTeacher = "teacher" // Authors exams
	RoleAdmin   = "admin"   // May mutate anything
)

// User Model
type User struct {
	ID             uint   `gorm:"primaryKey" json:"id"`                                                      // Primary key
	Username       string `gorm:"size:191;uniqueIndex;not null" json:"username"`                             // Unique username
	Email          string `gorm:"size:191;uniqueIndex;not null" json:"email"`                                // Unique email
	HashedPassword string `gorm:"not null" json:"-"`                                                         // Salted bcrypt hash, never serialized
	Name           string `json:"name"`                                                                      // Given name
	Surname        string `json:"surname"`                                                                   // Family name
	Role           string `gorm:"size:32;default:user" json:"role"`                                          // Role label
	Exams          []Exam `gorm:"foreignKey:OwnerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"` // Owned exams
}
