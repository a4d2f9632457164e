package metrics

// Prometheus metric namespaces
const (
	namespaceValidation = "validation"
)

// Validation subsystems
const (
	subsystemCoordinator = "coordinator"
	subsystemEvaluator   = "evaluator"
	subsystemChain       = "chain"
	subsystemNotifier    = "notifier"
	subsystemScheduler   = "scheduler"
	subsystemREST        = "rest"
)
