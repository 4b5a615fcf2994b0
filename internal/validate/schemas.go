package validate

var (
	roles        = []string{"admin", "parent", "child"}
	deviceTypes  = []string{"android", "ios", "web"}
	deviceStatus = []string{"active", "inactive", "blocked"}
)

func displayName(name string) Field { return Field{Name: name, Type: String, Min: 2, Max: 255} }

func optionalUUID(name string) Field { return Field{Name: name, Type: UUID} }

func requiredUUID(name string) Field { return Field{Name: name, Type: UUID, Required: true} }

func plainString(name string) Field { return Field{Name: name, Type: String} }

func requiredPlain(name string) Field { return Field{Name: name, Type: String, Required: true} }

var (
	TenantCreate = NewSchema(
		Field{Name: "name", Type: String, Required: true, Min: 2, Max: 255},
	)
	TenantUpdate = TenantCreate.Partial("name")

	UserCreate = NewSchema(
		requiredUUID("tenant_id"),
		requiredPlain("external_auth_id"),
		Field{Name: "email", Type: String, Required: true, Email: true},
		displayName("name"),
		Field{Name: "role", Type: String, Required: true, OneOf: roles},
	)
	UserUpdate = UserCreate.Partial("name", "role")

	DeviceCreate = NewSchema(
		requiredUUID("tenant_id"),
		requiredPlain("device_uid"),
		displayName("device_name"),
		Field{Name: "device_type", Type: String, Required: true, OneOf: deviceTypes},
		optionalUUID("owner_user_id"),
		optionalUUID("child_id"),
		plainString("os"),
		plainString("os_version"),
		Field{Name: "status", Type: String, OneOf: deviceStatus, Default: "active"},
	)
	DeviceUpdate = DeviceCreate.Partial("device_name", "device_type", "owner_user_id", "child_id", "os", "os_version", "status")

	AppCreate = NewSchema(
		requiredUUID("tenant_id"),
		requiredUUID("device_id"),
		requiredPlain("app_package"),
		displayName("app_name"),
		plainString("app_version"),
		Field{Name: "app_details", Type: Object},
	)
	AppUpdate = AppCreate.Partial("app_name", "app_version", "app_details")
)
