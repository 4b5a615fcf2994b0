package models

import "time"

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleParent Role = "parent"
	RoleChild  Role = "child"
)

type DeviceType string

const (
	DeviceAndroid DeviceType = "android"
	DeviceIOS     DeviceType = "ios"
	DeviceWeb     DeviceType = "web"
)

type DeviceStatus string

const (
	StatusActive   DeviceStatus = "active"
	StatusInactive DeviceStatus = "inactive"
	StatusBlocked  DeviceStatus = "blocked"
)

// Tenant names are unique only among rows that are not soft-deleted.
type Tenant struct {
	ID          string     `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string     `gorm:"size:255;not null;uniqueIndex:idx_tenants_name_live,where:deleted_at IS NULL" json:"name"`
	CreatedAt   time.Time  `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at"`
	UserCount   *int64     `gorm:"->;-:migration" json:"user_count,omitempty"`
	DeviceCount *int64     `gorm:"->;-:migration" json:"device_count,omitempty"`
}

type User struct {
	ID             string     `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID       string     `gorm:"type:uuid;not null;index" json:"tenant_id"`
	ExternalAuthID string     `gorm:"size:255;not null" json:"external_auth_id"`
	Email          string     `gorm:"size:255;not null" json:"email"`
	Name           *string    `gorm:"size:255" json:"name"`
	Role           Role       `gorm:"size:16;not null;check:chk_users_role,role IN ('admin','parent','child')" json:"role"`
	CreatedAt      time.Time  `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt      *time.Time `json:"deleted_at"`
	Tenant         *Tenant    `gorm:"foreignKey:TenantID" json:"-"`
}

type Device struct {
	ID          string       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID    string       `gorm:"type:uuid;not null;index" json:"tenant_id"`
	DeviceUID   string       `gorm:"column:device_uid;size:255;not null;uniqueIndex" json:"device_uid"`
	DeviceName  *string      `gorm:"size:255" json:"device_name"`
	DeviceType  DeviceType   `gorm:"size:16;not null;check:chk_devices_type,device_type IN ('android','ios','web')" json:"device_type"`
	OwnerUserID *string      `gorm:"type:uuid" json:"owner_user_id"`
	ChildID     *string      `gorm:"type:uuid" json:"child_id"`
	OS          *string      `gorm:"column:os;size:64" json:"os"`
	OSVersion   *string      `gorm:"column:os_version;size:64" json:"os_version"`
	Status      DeviceStatus `gorm:"size:16;not null;default:'active';check:chk_devices_status,status IN ('active','inactive','blocked')" json:"status"`
	CreatedAt   time.Time    `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt   *time.Time   `json:"deleted_at"`
	Tenant      *Tenant      `gorm:"foreignKey:TenantID" json:"-"`
	OwnerUser   *User        `gorm:"foreignKey:OwnerUserID" json:"-"`
	Child       *User        `gorm:"foreignKey:ChildID" json:"-"`
}

// InstalledApp rows are removed outright; there is no deleted_at.
type InstalledApp struct {
	ID         string    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID   string    `gorm:"type:uuid;not null;uniqueIndex:idx_installed_apps_identity" json:"tenant_id"`
	DeviceID   string    `gorm:"type:uuid;not null;uniqueIndex:idx_installed_apps_identity" json:"device_id"`
	AppPackage string    `gorm:"size:255;not null;uniqueIndex:idx_installed_apps_identity" json:"app_package"`
	AppName    *string   `gorm:"size:255" json:"app_name"`
	AppVersion *string   `gorm:"size:64" json:"app_version"`
	AppDetails JSONB     `gorm:"type:jsonb" json:"app_details"`
	CreatedAt  time.Time `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null;default:now()" json:"updated_at"`
	Tenant     *Tenant   `gorm:"foreignKey:TenantID" json:"-"`
	Device     *Device   `gorm:"foreignKey:DeviceID" json:"-"`
}

func (InstalledApp) TableName() string { return "installed_apps" }

// All lists the models in foreign-key order for AutoMigrate.
func All() []any {
	return []any{&Tenant{}, &User{}, &Device{}, &InstalledApp{}}
}
