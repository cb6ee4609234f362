package model

type CameraStatus string

const (
	CameraOnline      CameraStatus = "online"
	CameraOffline     CameraStatus = "offline"
	CameraMaintenance CameraStatus = "maintenance"
)

// Camera holds metadata for a site camera. No video is handled by the service.
type Camera struct {
	BaseModel
	Name      string       `gorm:"type:varchar(100);not null" json:"name" validate:"required"`
	Location  string       `gorm:"type:varchar(255)" json:"location" validate:"required"`
	StreamURL string       `gorm:"type:varchar(500)" json:"stream_url" validate:"omitempty,url"`
	Status    CameraStatus `gorm:"type:varchar(20);not null;default:'offline'" json:"status" validate:"required,oneof=online offline maintenance"`
	Notes     string       `gorm:"type:text" json:"notes"`
}
