package types

import "time"

// RoleName identifies one of the seeded roles. Business logic looks roles up
// by name, never by id.
type RoleName string

const (
	RoleAdmin   RoleName = "Admin"
	RoleDoctor  RoleName = "Doctor"
	RoleStudent RoleName = "Student"
)

// User is the identity root shared by students, doctors and admins
type User struct {
	ID                     string     `json:"id" db:"id"`
	Email                  string     `json:"email" db:"email"`
	PasswordHash           string     `json:"-" db:"password_hash"`
	FirstName              string     `json:"firstName" db:"first_name"`
	LastName               string     `json:"lastName" db:"last_name"`
	PhoneNumber            *string    `json:"phoneNumber,omitempty" db:"phone_number"`
	IsActive               bool       `json:"isActive" db:"is_active"`
	IsDeleted              bool       `json:"-" db:"is_deleted"`
	RefreshToken           *string    `json:"-" db:"refresh_token"`
	RefreshTokenExpiryTime *time.Time `json:"-" db:"refresh_token_expiry_time"`
	Roles                  []RoleName `json:"roles,omitempty"`
	CreatedAt              time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt              *time.Time `json:"updatedAt,omitempty" db:"updated_at"`
}

// FullName returns "First Last"
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// HasRole reports whether the user holds the named role
func (u *User) HasRole(role RoleName) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Role is a named permission group
type Role struct {
	ID          string    `json:"id" db:"id"`
	Name        RoleName  `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// UserRole links a user to a role
type UserRole struct {
	ID         string    `json:"id" db:"id"`
	UserID     string    `json:"userId" db:"user_id"`
	RoleID     string    `json:"roleId" db:"role_id"`
	AssignedAt time.Time `json:"assignedAt" db:"assigned_at"`
}

// Student is the student profile owned by exactly one user
type Student struct {
	ID                    string     `json:"id" db:"id"`
	UserID                string     `json:"userId" db:"user_id"`
	MatricNumber          string     `json:"matricNumber" db:"matric_number"`
	DateOfBirth           time.Time  `json:"dateOfBirth" db:"date_of_birth"`
	Gender                string     `json:"gender" db:"gender"`
	Address               *string    `json:"address,omitempty" db:"address"`
	Faculty               *string    `json:"faculty,omitempty" db:"faculty"`
	Department            *string    `json:"department,omitempty" db:"department"`
	YearOfStudy           int        `json:"yearOfStudy" db:"year_of_study"`
	BloodGroup            *string    `json:"bloodGroup,omitempty" db:"blood_group"`
	Genotype              *string    `json:"genotype,omitempty" db:"genotype"`
	Allergies             *string    `json:"allergies,omitempty" db:"allergies"`
	EmergencyContactName  *string    `json:"emergencyContactName,omitempty" db:"emergency_contact_name"`
	EmergencyContactPhone *string    `json:"emergencyContactPhone,omitempty" db:"emergency_contact_phone"`
	IsVerified            bool       `json:"isVerified" db:"is_verified"`
	CreatedAt             time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt             *time.Time `json:"updatedAt,omitempty" db:"updated_at"`

	User *User `json:"user,omitempty"`
}

// Doctor is the doctor profile owned by exactly one user
type Doctor struct {
	ID                string     `json:"id" db:"id"`
	UserID            string     `json:"userId" db:"user_id"`
	DepartmentID      string     `json:"departmentId" db:"department_id"`
	Specialization    string     `json:"specialization" db:"specialization"`
	LicenseNumber     string     `json:"licenseNumber" db:"license_number"`
	Qualifications    *string    `json:"qualifications,omitempty" db:"qualifications"`
	YearsOfExperience int        `json:"yearsOfExperience" db:"years_of_experience"`
	Rating            float64    `json:"rating" db:"rating"`
	TotalReviews      int        `json:"totalReviews" db:"total_reviews"`
	IsVerified        bool       `json:"isVerified" db:"is_verified"`
	CreatedAt         time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt         *time.Time `json:"updatedAt,omitempty" db:"updated_at"`

	User       *User       `json:"user,omitempty"`
	Department *Department `json:"department,omitempty"`
}

// Admin marks a user as a clinic administrator
type Admin struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"userId" db:"user_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Department is a clinic department doctors belong to
type Department struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description,omitempty" db:"description"`
	IsActive    bool      `json:"isActive" db:"is_active"`
	CreatedAt   time.Time `json:"-" db:"created_at"`
}

// LoginRequest represents user login credentials
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterStudentRequest is the full self-registration payload for students
type RegisterStudentRequest struct {
	FirstName             string    `json:"firstName" validate:"required,max=100"`
	LastName              string    `json:"lastName" validate:"required,max=100"`
	Email                 string    `json:"email" validate:"required,email,max=255"`
	PhoneNumber           *string   `json:"phoneNumber,omitempty" validate:"omitempty,max=20"`
	Password              string    `json:"password" validate:"required"`
	MatricNumber          string    `json:"matricNumber" validate:"required,max=50"`
	DateOfBirth           time.Time `json:"dateOfBirth"`
	Gender                string    `json:"gender" validate:"required,max=10"`
	Address               *string   `json:"address,omitempty"`
	Faculty               *string   `json:"faculty,omitempty" validate:"omitempty,max=100"`
	Department            *string   `json:"department,omitempty" validate:"omitempty,max=100"`
	YearOfStudy           int       `json:"yearOfStudy" validate:"gte=0"`
	BloodGroup            *string   `json:"bloodGroup,omitempty" validate:"omitempty,max=5"`
	Genotype              *string   `json:"genotype,omitempty" validate:"omitempty,max=5"`
	Allergies             *string   `json:"allergies,omitempty"`
	EmergencyContactName  *string   `json:"emergencyContactName,omitempty"`
	EmergencyContactPhone *string   `json:"emergencyContactPhone,omitempty"`
}

// RefreshTokenRequest carries an access token, possibly expired, and the
// refresh token issued alongside it
type RefreshTokenRequest struct {
	AccessToken  string `json:"accessToken" validate:"required"`
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// UserSummary is the user block returned with every token pair
type UserSummary struct {
	ID        string     `json:"id"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Email     string     `json:"email"`
	Roles     []RoleName `json:"roles"`
}

// AuthResponse represents authentication token response
type AuthResponse struct {
	AccessToken          string      `json:"accessToken"`
	RefreshToken         string      `json:"refreshToken"`
	TokenType            string      `json:"tokenType"`
	AccessTokenExpiresAt time.Time   `json:"accessTokenExpiresAt"`
	User                 UserSummary `json:"user"`
}

// CreateDoctorRequest is the admin payload for provisioning a doctor account
type CreateDoctorRequest struct {
	Email             string  `json:"email" validate:"required,email,max=255"`
	Password          string  `json:"password" validate:"required"`
	FirstName         string  `json:"firstName" validate:"required,max=100"`
	LastName          string  `json:"lastName" validate:"required,max=100"`
	PhoneNumber       string  `json:"phoneNumber" validate:"required,max=20"`
	DepartmentID      string  `json:"departmentId" validate:"required,uuid"`
	Specialization    string  `json:"specialization" validate:"required,max=200"`
	LicenseNumber     string  `json:"licenseNumber" validate:"required,max=50"`
	Qualifications    *string `json:"qualifications,omitempty"`
	YearsOfExperience int     `json:"yearsOfExperience" validate:"gte=0"`
}

// DoctorDetail is the admin listing row for a doctor
type DoctorDetail struct {
	ID                string    `json:"id"`
	UserID            string    `json:"userId"`
	Email             string    `json:"email"`
	FirstName         string    `json:"firstName"`
	LastName          string    `json:"lastName"`
	PhoneNumber       string    `json:"phoneNumber"`
	DepartmentID      string    `json:"departmentId"`
	DepartmentName    string    `json:"departmentName"`
	Specialization    string    `json:"specialization"`
	LicenseNumber     string    `json:"licenseNumber"`
	Qualifications    *string   `json:"qualifications,omitempty"`
	YearsOfExperience int       `json:"yearsOfExperience"`
	Rating            float64   `json:"rating"`
	IsVerified        bool      `json:"isVerified"`
	IsActive          bool      `json:"isActive"`
	CreatedAt         time.Time `json:"createdAt"`
}

// StudentDetail is the admin listing row for a student
type StudentDetail struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	Email        string    `json:"email"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	PhoneNumber  string    `json:"phoneNumber"`
	MatricNumber string    `json:"matricNumber"`
	DateOfBirth  time.Time `json:"dateOfBirth"`
	Gender       string    `json:"gender"`
	Faculty      *string   `json:"faculty,omitempty"`
	Department   *string   `json:"department,omitempty"`
	YearOfStudy  int       `json:"yearOfStudy"`
	BloodGroup   *string   `json:"bloodGroup,omitempty"`
	Genotype     *string   `json:"genotype,omitempty"`
	Allergies    *string   `json:"allergies,omitempty"`
	IsVerified   bool      `json:"isVerified"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
}

// StudentProfile is the authenticated student's own view of their record
type StudentProfile struct {
	ID                    string    `json:"id"`
	UserID                string    `json:"userId"`
	MatricNumber          string    `json:"matricNumber"`
	FirstName             string    `json:"firstName"`
	LastName              string    `json:"lastName"`
	Email                 string    `json:"email"`
	PhoneNumber           *string   `json:"phoneNumber,omitempty"`
	DateOfBirth           time.Time `json:"dateOfBirth"`
	Gender                string    `json:"gender"`
	Address               *string   `json:"address,omitempty"`
	Faculty               *string   `json:"faculty,omitempty"`
	Department            *string   `json:"department,omitempty"`
	YearOfStudy           int       `json:"yearOfStudy"`
	BloodGroup            *string   `json:"bloodGroup,omitempty"`
	Genotype              *string   `json:"genotype,omitempty"`
	Allergies             *string   `json:"allergies,omitempty"`
	EmergencyContactName  *string   `json:"emergencyContactName,omitempty"`
	EmergencyContactPhone *string   `json:"emergencyContactPhone,omitempty"`
	IsVerified            bool      `json:"isVerified"`
	CreatedAt             time.Time `json:"createdAt"`
}

// UpdateStudentProfileRequest exposes only the mutable part of a student
// profile. Name, matric number, date of birth and gender are not settable.
type UpdateStudentProfileRequest struct {
	PhoneNumber           *string `json:"phoneNumber,omitempty"`
	Address               *string `json:"address,omitempty"`
	Faculty               *string `json:"faculty,omitempty" validate:"omitempty,max=100"`
	Department            *string `json:"department,omitempty" validate:"omitempty,max=100"`
	YearOfStudy           *int    `json:"yearOfStudy,omitempty" validate:"omitempty,min=1,max=7"`
	BloodGroup            *string `json:"bloodGroup,omitempty" validate:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	Genotype              *string `json:"genotype,omitempty" validate:"omitempty,oneof=AA AS SS AC"`
	Allergies             *string `json:"allergies,omitempty"`
	EmergencyContactName  *string `json:"emergencyContactName,omitempty"`
	EmergencyContactPhone *string `json:"emergencyContactPhone,omitempty"`
}

// IsEmpty reports whether the request changes nothing
func (r *UpdateStudentProfileRequest) IsEmpty() bool {
	return r.PhoneNumber == nil && r.Address == nil && r.Faculty == nil &&
		r.Department == nil && r.YearOfStudy == nil && r.BloodGroup == nil &&
		r.Genotype == nil && r.Allergies == nil && r.EmergencyContactName == nil &&
		r.EmergencyContactPhone == nil
}

// Principal is the authenticated caller extracted from a validated access token
type Principal struct {
	UserID    string     `json:"userId"`
	Email     string     `json:"email"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Roles     []RoleName `json:"roles"`
}

// HasAnyRole reports whether the principal holds at least one of roles
func (p *Principal) HasAnyRole(roles ...RoleName) bool {
	for _, held := range p.Roles {
		for _, want := range roles {
			if held == want {
				return true
			}
		}
	}
	return false
}
