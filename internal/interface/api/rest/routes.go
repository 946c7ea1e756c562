package rest

const (
	// api
	RouteApi = "/api"

	// auth
	RouteAuth  = RouteApi + "/auth"
	RouteLogin = RouteAuth + "/login"

	// records, trailing slashes are part of the public contract
	RouteRecords        = RouteApi + "/users/"
	RouteRecordsDeleted = RouteRecords + "deleted/"
	RouteRecord         = RouteRecords + ":id/"
	RouteRecordHardDel  = RouteRecord + "hard_delete/"
	RouteRecordRestore  = RouteRecord + "restore/"

	// ops
	RouteHealth  = RouteApi + "/healthz"
	RouteMetrics = RouteApi + "/metrics"
)
