package apiclient

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"pkt.systems/dlmgr/schema"
)

// Route is a backend endpoint: a method and a path template. Placeholders
// written {name} take one escaped path segment; {name*} takes a slash
// separated path whose segments are escaped individually.
type Route struct {
	Method string
	Path   string
}

// Expand fills the placeholders of the route's path in order.
func (r Route) Expand(args ...string) (string, error) {
	var b strings.Builder
	rest := r.Path
	used := 0
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			b.WriteString(rest)
			break
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			return "", fmt.Errorf("%w: unterminated placeholder in %q", schema.ErrInvalidRequest, r.Path)
		}
		name := rest[open+1 : open+end]
		b.WriteString(rest[:open])
		rest = rest[open+end+1:]
		if used >= len(args) {
			return "", fmt.Errorf("%w: missing value for {%s} in %s", schema.ErrInvalidRequest, name, r.Path)
		}
		value := args[used]
		used++
		if value == "" {
			return "", fmt.Errorf("%w: empty value for {%s} in %s", schema.ErrInvalidRequest, name, r.Path)
		}
		if strings.HasSuffix(name, "*") {
			b.WriteString(escapePath(value))
		} else {
			b.WriteString(url.PathEscape(value))
		}
	}
	if used != len(args) {
		return "", fmt.Errorf("%w: %d values for %s", schema.ErrInvalidRequest, len(args), r.Path)
	}
	return b.String(), nil
}

func escapePath(value string) string {
	segments := strings.Split(strings.Trim(value, "/"), "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/")
}

// Routing table.
var (
	routeLogin          = Route{http.MethodPost, "/api/v1/auth/login"}
	routeRegister       = Route{http.MethodPost, "/api/v1/auth/register"}
	routeMe             = Route{http.MethodGet, "/api/v1/auth/me"}
	routeChangePassword = Route{http.MethodPost, "/api/v1/auth/me/password"}
	routeChangeUsername = Route{http.MethodPut, "/api/v1/auth/me/username"}
	routeChangeEmail    = Route{http.MethodPut, "/api/v1/auth/me/email"}
	routeSetAvatar      = Route{http.MethodPut, "/api/v1/auth/me/avatar"}
	routeUploadAvatar   = Route{http.MethodPost, "/api/v1/auth/me/avatar"}
	routeDeleteAccount  = Route{http.MethodDelete, "/api/v1/auth/me"}

	routeListUsers       = Route{http.MethodGet, "/api/v1/auth/users"}
	routeSyncUsers       = Route{http.MethodPost, "/api/v1/auth/users/sync"}
	routeCreateUser      = Route{http.MethodPost, "/api/v1/auth/users"}
	routeUpdateUser      = Route{http.MethodPut, "/api/v1/auth/users/{id}"}
	routeSetUserPassword = Route{http.MethodPost, "/api/v1/auth/users/{id}/password"}
	routeDeleteUser      = Route{http.MethodDelete, "/api/v1/auth/users/{id}"}

	routeListConfigs  = Route{http.MethodGet, "/api/v1/configs/"}
	routeGetConfig    = Route{http.MethodGet, "/api/v1/configs/{name}"}
	routeSaveConfig   = Route{http.MethodPut, "/api/v1/configs/{name}"}
	routeDeleteConfig = Route{http.MethodDelete, "/api/v1/configs/{name}"}
	routeUploadCookie = Route{http.MethodPost, "/api/v1/configs/cookies"}
	routeResetArchive = Route{http.MethodPost, "/api/v1/configs/reset-archive"}

	routeListURLs  = Route{http.MethodGet, "/api/v1/urls/"}
	routeGetURL    = Route{http.MethodGet, "/api/v1/urls/{name}"}
	routeSaveURL   = Route{http.MethodPut, "/api/v1/urls/{name}"}
	routeDeleteURL = Route{http.MethodDelete, "/api/v1/urls/{name}"}

	routeListSources  = Route{http.MethodGet, "/api/v1/downloads/"}
	routeStart        = Route{http.MethodPost, "/api/v1/downloads/{name}"}
	routeJobStatus    = Route{http.MethodGet, "/api/v1/downloads/status/{id}"}
	routeStopJob      = Route{http.MethodPost, "/api/v1/downloads/stop/{id}"}
	routeCancelJob    = Route{http.MethodPost, "/api/v1/downloads/cancel/{id}"}
	routeStopAll      = Route{http.MethodPost, "/api/v1/downloads/stop-all"}
	routeCancelAll    = Route{http.MethodPost, "/api/v1/downloads/cancel-all"}
	routeRunningJobs  = Route{http.MethodGet, "/api/v1/downloads/running"}
	routeUsersWithJob = Route{http.MethodGet, "/api/v1/downloads/users-with-jobs"}

	routeListFiles  = Route{http.MethodGet, "/api/v1/files/"}
	routeDeleteFile = Route{http.MethodDelete, "/api/v1/files/{path*}"}
	routeRenameFile = Route{http.MethodPost, "/api/v1/files/rename"}

	routeAdminListFiles    = Route{http.MethodGet, "/api/v1/admin/files/"}
	routeAdminDeleteFile   = Route{http.MethodDelete, "/api/v1/admin/files/{path*}"}
	routeAdminRenameFile   = Route{http.MethodPost, "/api/v1/admin/files/rename"}
	routeAdminDownloadFile = Route{http.MethodGet, "/api/v1/admin/files/download/{path*}"}

	routeUserLogs    = Route{http.MethodGet, "/api/v1/logs/user"}
	routeBackendLogs = Route{http.MethodGet, "/api/v1/logs/backend"}
	routeServerLogs  = Route{http.MethodGet, "/api/v1/logs/server"}
	routeLogsByUser  = Route{http.MethodGet, "/api/v1/logs/by-user/{username}"}

	routeSystemCheck    = Route{http.MethodGet, "/api/v1/system/check"}
	routeVersion        = Route{http.MethodGet, "/api/v1/system/version"}
	routeAppInfo        = Route{http.MethodGet, "/api/v1/system/app-info"}
	routeServerInfo     = Route{http.MethodGet, "/api/v1/system/server-info"}
	routeEnvConfig      = Route{http.MethodGet, "/api/v1/system/env-config"}
	routeUpdateEnv      = Route{http.MethodPut, "/api/v1/system/env-config"}
	routeUpgrade        = Route{http.MethodPost, "/api/v1/system/upgrade"}
	routeRestartServer  = Route{http.MethodPost, "/api/v1/system/restart"}
	routeShutdownServer = Route{http.MethodPost, "/api/v1/system/shutdown"}

	routeListTasks    = Route{http.MethodGet, "/api/v1/tasks/"}
	routeGetTask      = Route{http.MethodGet, "/api/v1/tasks/{id}"}
	routeAllTasks     = Route{http.MethodGet, "/api/v1/tasks/admin/tasks"}
	routeCreateTask   = Route{http.MethodPost, "/api/v1/tasks/"}
	routeUpdateTask   = Route{http.MethodPut, "/api/v1/tasks/{id}"}
	routeDeleteTask   = Route{http.MethodDelete, "/api/v1/tasks/{id}"}
	routeCleanup      = Route{http.MethodPost, "/api/v1/tasks/cleanup"}
	routeCleanupCount = Route{http.MethodGet, "/api/v1/tasks/cleanup/count"}

	routeHealth = Route{http.MethodGet, "/health"}
)
