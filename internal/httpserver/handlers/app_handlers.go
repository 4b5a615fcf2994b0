package handlers

import (
	"encoding/json"
	"famlink/internal/models"
	"famlink/internal/validate"
)

var apps = resource{
	singular: "app",
	plural:   "apps",
	title:    "App",
	conflict: "App already exists",
}

// Installed apps have no soft-delete state; delete removes the row.
const (
	listAppsSQL = `SELECT * FROM installed_apps ORDER BY created_at DESC`

	getAppSQL = `SELECT * FROM installed_apps WHERE id = ?`

	createAppSQL = `INSERT INTO installed_apps (tenant_id, device_id, app_package, app_name, app_version, app_details)
VALUES (?, ?, ?, ?, ?, ?) RETURNING *`

	updateAppSQL = `UPDATE installed_apps SET
	app_name = COALESCE(?, app_name),
	app_version = COALESCE(?, app_version),
	app_details = COALESCE(?, app_details),
	updated_at = NOW()
WHERE id = ? RETURNING *`

	deleteAppSQL = `DELETE FROM installed_apps WHERE id = ? RETURNING *`
)

// appDetails re-encodes the validated object; absent stays SQL NULL.
func appDetails(v validate.Values) models.JSONB {
	obj := v.Object("app_details")
	if obj == nil {
		return nil
	}
	b, err := json.Marshal(obj)
	if err != nil {
		return nil
	}
	return models.JSONB(b)
}

func bindAppMutable(v validate.Values) []any {
	return []any{v.String("app_name"), v.String("app_version"), appDetails(v)}
}

func (h *Handlers) Apps() Set {
	return Set{
		List: list[models.InstalledApp](h, apps, listAppsSQL),
		Get:  get[models.InstalledApp](h, apps, getAppSQL),
		Create: create[models.InstalledApp](h, apps, validate.AppCreate, createAppSQL, func(v validate.Values) []any {
			return append([]any{v.String("tenant_id"), v.String("device_id"), v.String("app_package")}, bindAppMutable(v)...)
		}),
		Update: update[models.InstalledApp](h, apps, validate.AppUpdate, updateAppSQL, bindAppMutable),
		Delete: remove[models.InstalledApp](h, apps, deleteAppSQL),
	}
}
