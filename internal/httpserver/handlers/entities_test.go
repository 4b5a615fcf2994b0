package handlers_test

import (
	"database/sql/driver"
	"encoding/json"
	"famlink/internal/httpserver/handlers"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func userColumns() []string {
	return []string{"id", "tenant_id", "external_auth_id", "email", "name", "role", "created_at", "updated_at", "deleted_at"}
}

func deviceColumns() []string {
	return []string{"id", "tenant_id", "device_uid", "device_name", "device_type", "owner_user_id", "child_id",
		"os", "os_version", "status", "created_at", "updated_at", "deleted_at"}
}

func appColumns() []string {
	return []string{"id", "tenant_id", "device_id", "app_package", "app_name", "app_version", "app_details", "created_at", "updated_at"}
}

func TestCreateUserValidation(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"missing role", `{"tenant_id":"` + tenantID + `","external_auth_id":"auth0|1","email":"p@acme.io"}`, `"role" is required`},
		{"bad tenant", `{"tenant_id":"acme","external_auth_id":"auth0|1","email":"p@acme.io","role":"parent"}`, `"tenant_id" must be a valid GUID`},
		{"bad email", `{"tenant_id":"` + tenantID + `","external_auth_id":"auth0|1","email":"nope","role":"parent"}`, `"email" must be a valid email`},
		{"bad role", `{"tenant_id":"` + tenantID + `","external_auth_id":"auth0|1","email":"p@acme.io","role":"owner"}`, `"role" must be one of [admin, parent, child]`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv, _ := newTestServer(t, handlers.Options{})
			rec := do(t, srv, http.MethodPost, "/api/users", tc.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tc.want, decodeObject(t, rec)["message"])
		})
	}
}

func TestCreateUserDuplicate(t *testing.T) {
	srv, mock := newTestServer(t, handlers.Options{})
	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	rec := do(t, srv, http.MethodPost, "/api/users",
		`{"tenant_id":"`+tenantID+`","external_auth_id":"auth0|1","email":"p@acme.io","role":"parent"}`)

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "User already exists", decodeObject(t, rec)["message"])
}

func TestCreateDeviceRejectsDesktop(t *testing.T) {
	srv, _ := newTestServer(t, handlers.Options{})

	rec := do(t, srv, http.MethodPost, "/api/devices",
		`{"tenant_id":"`+tenantID+`","device_uid":"uid-1","device_type":"desktop"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, `"device_type" must be one of [android, ios, web]`, decodeObject(t, rec)["message"])
}

func TestCreateDeviceDefaultsStatus(t *testing.T) {
	srv, mock := newTestServer(t, handlers.Options{})
	now := time.Now()
	mock.ExpectQuery("INSERT INTO devices").
		WithArgs(tenantID, "uid-1", nil, "android", nil, nil, nil, nil, "active").
		WillReturnRows(sqlmock.NewRows(deviceColumns()).
			AddRow(deviceID, tenantID, "uid-1", nil, "android", nil, nil, nil, nil, "active", now, now, nil))

	rec := do(t, srv, http.MethodPost, "/api/devices",
		`{"tenant_id":"`+tenantID+`","device_uid":"uid-1","device_type":"android"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeObject(t, rec)
	assert.Equal(t, "active", body["status"])
	assert.Nil(t, body["device_name"])
}

func TestUpdateDeviceKeepsAbsentFields(t *testing.T) {
	srv, mock := newTestServer(t, handlers.Options{})
	now := time.Now()
	mock.ExpectQuery("UPDATE devices SET").
		WithArgs(nil, nil, nil, nil, nil, nil, "blocked", deviceID).
		WillReturnRows(sqlmock.NewRows(deviceColumns()).
			AddRow(deviceID, tenantID, "uid-1", "Tablet", "android", nil, nil, "Android", "14", "blocked", now, now, nil))

	rec := do(t, srv, http.MethodPut, "/api/devices/"+deviceID, `{"status":"blocked"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeObject(t, rec)
	assert.Equal(t, "blocked", body["status"])
	assert.Equal(t, "Tablet", body["device_name"])
}

func TestCreateAppStoresDetails(t *testing.T) {
	srv, mock := newTestServer(t, handlers.Options{})
	now := time.Now()
	mock.ExpectQuery("INSERT INTO installed_apps").
		WithArgs(tenantID, deviceID, "com.example.chat", "Chat", nil, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(appColumns()).
			AddRow(appID, tenantID, deviceID, "com.example.chat", "Chat", nil, []byte(`{"category":"social"}`), now, now))

	rec := do(t, srv, http.MethodPost, "/api/apps",
		`{"tenant_id":"`+tenantID+`","device_id":"`+deviceID+`","app_package":"com.example.chat","app_name":"Chat","app_details":{"category":"social"}}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeObject(t, rec)
	assert.Equal(t, map[string]any{"category": "social"}, body["app_details"])
	assert.NotContains(t, body, "deleted_at")
}

func TestCreateAppDetailsMustBeObject(t *testing.T) {
	srv, _ := newTestServer(t, handlers.Options{})

	rec := do(t, srv, http.MethodPost, "/api/apps",
		`{"tenant_id":"`+tenantID+`","device_id":"`+deviceID+`","app_package":"com.example.chat","app_details":"social"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, `"app_details" must be of type object`, decodeObject(t, rec)["message"])
}

func TestDeleteAppRemovesRow(t *testing.T) {
	srv, mock := newTestServer(t, handlers.Options{})
	now := time.Now()
	mock.ExpectQuery("DELETE FROM installed_apps").
		WithArgs(appID).
		WillReturnRows(sqlmock.NewRows(appColumns()).
			AddRow(appID, tenantID, deviceID, "com.example.chat", nil, nil, nil, now, now))
	mock.ExpectQuery("DELETE FROM installed_apps").
		WithArgs(appID).
		WillReturnRows(sqlmock.NewRows(appColumns()))

	rec := do(t, srv, http.MethodDelete, "/api/apps/"+appID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"App deleted successfully"}`, rec.Body.String())

	rec = do(t, srv, http.MethodDelete, "/api/apps/"+appID, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "App not found", decodeObject(t, rec)["message"])
}

// A tenant, its parent and a device, then the tenant view with counts, then
// the tenant is soft-deleted and disappears from reads.
func TestTenantLifecycle(t *testing.T) {
	srv, mock := newTestServer(t, handlers.Options{})
	now := time.Now()

	mock.ExpectQuery("INSERT INTO tenants").WithArgs("Acme").
		WillReturnRows(tenantRow(tenantID, "Acme"))
	mock.ExpectQuery("INSERT INTO users").
		WithArgs(tenantID, "auth0|parent", "parent@acme.io", "Pat", "parent").
		WillReturnRows(sqlmock.NewRows(userColumns()).
			AddRow(userID, tenantID, "auth0|parent", "parent@acme.io", "Pat", "parent", now, now, nil))
	mock.ExpectQuery("INSERT INTO devices").
		WithArgs(tenantID, "pixel-7", nil, "android", userID, nil, nil, nil, "active").
		WillReturnRows(sqlmock.NewRows(deviceColumns()).
			AddRow(deviceID, tenantID, "pixel-7", nil, "android", userID, nil, nil, nil, "active", now, now, nil))
	mock.ExpectQuery("FROM tenants t").WithArgs(tenantID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at", "updated_at", "deleted_at", "user_count", "device_count"}).
			AddRow(tenantID, "Acme", now, now, nil, int64(1), int64(1)))
	mock.ExpectQuery("UPDATE tenants SET deleted_at").WithArgs(tenantID).
		WillReturnRows(tenantRow(tenantID, "Acme"))
	mock.ExpectQuery("FROM tenants t").WithArgs(tenantID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	rec := do(t, srv, http.MethodPost, "/api/tenants", `{"name":"Acme"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, srv, http.MethodPost, "/api/users",
		`{"tenant_id":"`+tenantID+`","external_auth_id":"auth0|parent","email":"parent@acme.io","name":"Pat","role":"parent"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, userID, decodeObject(t, rec)["id"])

	rec = do(t, srv, http.MethodPost, "/api/devices",
		`{"tenant_id":"`+tenantID+`","device_uid":"pixel-7","device_type":"android","owner_user_id":"`+userID+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/tenants/"+tenantID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var tn struct {
		Name        string `json:"name"`
		UserCount   int    `json:"user_count"`
		DeviceCount int    `json:"device_count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tn))
	assert.Equal(t, "Acme", tn.Name)
	assert.Equal(t, 1, tn.UserCount)
	assert.Equal(t, 1, tn.DeviceCount)

	rec = do(t, srv, http.MethodDelete, "/api/tenants/"+tenantID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/tenants/"+tenantID, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateTenantDuplicateName(t *testing.T) {
	srv, mock := newTestServer(t, handlers.Options{})
	mock.ExpectQuery("UPDATE tenants SET").
		WithArgs("Globex", tenantID).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	rec := do(t, srv, http.MethodPut, "/api/tenants/"+tenantID, `{"name":"Globex"}`)

	require.Equal(t, http.StatusConflict, rec.Code)
	body := decodeObject(t, rec)
	assert.Equal(t, "Tenant name already exists", body["message"])
	assert.NotContains(t, body, "error")
}

func TestUpdateUserBindsNameRoleThenID(t *testing.T) {
	srv, mock := newTestServer(t, handlers.Options{})
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE users SET name = COALESCE($1, name), role = COALESCE($2, role)")).
		WithArgs("Sam", "child", userID).
		WillReturnRows(sqlmock.NewRows(userColumns()).
			AddRow(userID, tenantID, "auth0|kid", "kid@acme.io", "Sam", "child", now, now, nil))

	rec := do(t, srv, http.MethodPut, "/api/users/"+userID, `{"role":"child","name":"Sam"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeObject(t, rec)
	assert.Equal(t, "Sam", body["name"])
	assert.Equal(t, "child", body["role"])
}

func TestUpdateAppEmptyPayload(t *testing.T) {
	srv, mock := newTestServer(t, handlers.Options{})
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE installed_apps SET")).
		WithArgs(nil, nil, nil, appID).
		WillReturnRows(sqlmock.NewRows(appColumns()).
			AddRow(appID, tenantID, deviceID, "com.example.chat", "Chat", "1.0", []byte(`{"category":"social"}`), now, now))

	rec := do(t, srv, http.MethodPut, "/api/apps/"+appID, `{}`)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeObject(t, rec)
	assert.Equal(t, "1.0", body["app_version"])
	assert.Equal(t, map[string]any{"category": "social"}, body["app_details"])
}

func TestUpdateAppBindsMutableFields(t *testing.T) {
	srv, mock := newTestServer(t, handlers.Options{})
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE installed_apps SET")).
		WithArgs("Chat+", "2.0", []byte(`{"beta":true}`), appID).
		WillReturnRows(sqlmock.NewRows(appColumns()).
			AddRow(appID, tenantID, deviceID, "com.example.chat", "Chat+", "2.0", []byte(`{"beta":true}`), now, now))

	rec := do(t, srv, http.MethodPut, "/api/apps/"+appID, `{"app_details":{"beta":true},"app_version":"2.0","app_name":"Chat+"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2.0", decodeObject(t, rec)["app_version"])
}

// Users and devices read only live rows; apps have no soft-delete state.
func TestReadStatements(t *testing.T) {
	now := time.Now()
	userRow := func() *sqlmock.Rows {
		return sqlmock.NewRows(userColumns()).
			AddRow(userID, tenantID, "auth0|1", "p@acme.io", nil, "parent", now, now, nil)
	}
	deviceRow := func() *sqlmock.Rows {
		return sqlmock.NewRows(deviceColumns()).
			AddRow(deviceID, tenantID, "uid-1", nil, "ios", nil, nil, nil, nil, "active", now, now, nil)
	}
	appRow := func() *sqlmock.Rows {
		return sqlmock.NewRows(appColumns()).
			AddRow(appID, tenantID, deviceID, "com.example.chat", nil, nil, nil, now, now)
	}

	cases := []struct {
		name  string
		path  string
		query string
		args  []driver.Value
		rows  func() *sqlmock.Rows
		id    string
		list  bool
	}{
		{"list users", "/api/users", "SELECT * FROM users WHERE deleted_at IS NULL ORDER BY created_at DESC", nil, userRow, userID, true},
		{"get user", "/api/users/" + userID, "SELECT * FROM users WHERE id = $1 AND deleted_at IS NULL", []driver.Value{userID}, userRow, userID, false},
		{"list devices", "/api/devices", "SELECT * FROM devices WHERE deleted_at IS NULL ORDER BY created_at DESC", nil, deviceRow, deviceID, true},
		{"get device", "/api/devices/" + deviceID, "SELECT * FROM devices WHERE id = $1 AND deleted_at IS NULL", []driver.Value{deviceID}, deviceRow, deviceID, false},
		{"list apps", "/api/apps", "SELECT * FROM installed_apps ORDER BY created_at DESC", nil, appRow, appID, true},
		{"get app", "/api/apps/" + appID, "SELECT * FROM installed_apps WHERE id = $1", []driver.Value{appID}, appRow, appID, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv, mock := newTestServer(t, handlers.Options{})
			exp := mock.ExpectQuery("^" + regexp.QuoteMeta(tc.query) + "$")
			if tc.args != nil {
				exp = exp.WithArgs(tc.args...)
			}
			exp.WillReturnRows(tc.rows())

			rec := do(t, srv, http.MethodGet, tc.path, "")

			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			if tc.list {
				var out []map[string]any
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
				require.Len(t, out, 1)
				assert.Equal(t, tc.id, out[0]["id"])
				return
			}
			assert.Equal(t, tc.id, decodeObject(t, rec)["id"])
		})
	}
}
