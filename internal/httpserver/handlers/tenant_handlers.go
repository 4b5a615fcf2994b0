package handlers

import (
	"famlink/internal/models"
	"famlink/internal/validate"
)

var tenants = resource{
	singular: "tenant",
	plural:   "tenants",
	title:    "Tenant",
	conflict: "Tenant name already exists",
}

// DISTINCT keeps the two LEFT JOINs from multiplying each other's counts.
const tenantWithCounts = `SELECT t.*,
	COUNT(DISTINCT u.id) FILTER (WHERE u.deleted_at IS NULL) AS user_count,
	COUNT(DISTINCT d.id) FILTER (WHERE d.deleted_at IS NULL) AS device_count
FROM tenants t
LEFT JOIN users u ON u.tenant_id = t.id
LEFT JOIN devices d ON d.tenant_id = t.id`

const (
	listTenantsSQL = tenantWithCounts + `
WHERE t.deleted_at IS NULL
GROUP BY t.id
ORDER BY t.created_at DESC`

	getTenantSQL = tenantWithCounts + `
WHERE t.id = ? AND t.deleted_at IS NULL
GROUP BY t.id`

	createTenantSQL = `INSERT INTO tenants (name) VALUES (?) RETURNING *`

	updateTenantSQL = `UPDATE tenants SET name = COALESCE(?, name), updated_at = NOW()
WHERE id = ? AND deleted_at IS NULL RETURNING *`

	deleteTenantSQL = `UPDATE tenants SET deleted_at = NOW() WHERE id = ? AND deleted_at IS NULL RETURNING *`
)

func bindTenant(v validate.Values) []any {
	return []any{v.String("name")}
}

func (h *Handlers) Tenants() Set {
	return Set{
		List:   list[models.Tenant](h, tenants, listTenantsSQL),
		Get:    get[models.Tenant](h, tenants, getTenantSQL),
		Create: create[models.Tenant](h, tenants, validate.TenantCreate, createTenantSQL, bindTenant),
		Update: update[models.Tenant](h, tenants, validate.TenantUpdate, updateTenantSQL, bindTenant),
		Delete: remove[models.Tenant](h, tenants, deleteTenantSQL),
	}
}
