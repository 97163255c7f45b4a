package Models

// Permission levels. Workers can view everything and file reports; managers
// additionally approve/resolve reports and override unit status.
const (
	PermissionWorker  = 1
	PermissionManager = 2
)

type User struct {
	Id         uint   `json:"id" gorm:"primaryKey"`
	Name       string `json:"name" gorm:"size:100;not null"`
	Username   string `json:"username" gorm:"uniqueIndex;size:100;not null"`
	Password   []byte `json:"-"`
	Permission int    `json:"permission" gorm:"not null;default:1"`
}

func (u User) IsManager() bool {
	return u.Permission >= PermissionManager
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=WORKER MANAGER"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}
