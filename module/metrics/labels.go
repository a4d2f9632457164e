package metrics

const (
	LabelResult    = "result"
	LabelReason    = "reason"
	LabelVote      = "vote"
	LabelEventType = "event_type"
	LabelKind      = "kind"
	LabelMethod    = "method"
	LabelRoute     = "route"
)

const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

const (
	VoteApprove = "approve"
	VoteReject  = "reject"
)

const (
	KindComputed = "computed"
	KindFallback = "fallback"
)
