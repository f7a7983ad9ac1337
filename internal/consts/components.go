package consts

const (
	COMP_CTRL_TASK    = "task_ctrl"
	COMP_SVC_TASK     = "task_service"
	COMP_SVC_EVENTS   = "task_events"
	COMP_MW_AUTH      = "jwt_auth"
	COMP_MW_RATELIMIT = "rate_limiter"
	COMP_DAO_TASK     = "task_dao"
)
