package handlers

import (
	"famlink/internal/models"
	"famlink/internal/validate"
)

var devices = resource{
	singular: "device",
	plural:   "devices",
	title:    "Device",
	conflict: "Device already exists",
}

const (
	listDevicesSQL = `SELECT * FROM devices WHERE deleted_at IS NULL ORDER BY created_at DESC`

	getDeviceSQL = `SELECT * FROM devices WHERE id = ? AND deleted_at IS NULL`

	createDeviceSQL = `INSERT INTO devices (tenant_id, device_uid, device_name, device_type, owner_user_id, child_id, os, os_version, status)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING *`

	updateDeviceSQL = `UPDATE devices SET
	device_name = COALESCE(?, device_name),
	device_type = COALESCE(?, device_type),
	owner_user_id = COALESCE(?, owner_user_id),
	child_id = COALESCE(?, child_id),
	os = COALESCE(?, os),
	os_version = COALESCE(?, os_version),
	status = COALESCE(?, status),
	updated_at = NOW()
WHERE id = ? AND deleted_at IS NULL RETURNING *`

	deleteDeviceSQL = `UPDATE devices SET deleted_at = NOW() WHERE id = ? AND deleted_at IS NULL RETURNING *`
)

func bindDeviceMutable(v validate.Values) []any {
	return []any{
		v.String("device_name"), v.String("device_type"),
		v.String("owner_user_id"), v.String("child_id"),
		v.String("os"), v.String("os_version"), v.String("status"),
	}
}

func (h *Handlers) Devices() Set {
	return Set{
		List: list[models.Device](h, devices, listDevicesSQL),
		Get:  get[models.Device](h, devices, getDeviceSQL),
		Create: create[models.Device](h, devices, validate.DeviceCreate, createDeviceSQL, func(v validate.Values) []any {
			return append([]any{v.String("tenant_id"), v.String("device_uid")}, bindDeviceMutable(v)...)
		}),
		Update: update[models.Device](h, devices, validate.DeviceUpdate, updateDeviceSQL, bindDeviceMutable),
		Delete: remove[models.Device](h, devices, deleteDeviceSQL),
	}
}
