package core

// DispatcherStats represents runtime observability state for a dispatcher.
type DispatcherStats struct {
	Name          string
	Active        int
	PendingTasks  int
	PendingEvents int
	Dispatched    int64 // units run on the main thread
	Spawned       int64 // workers started by Run/RunTask
	Discarded     int64 // units dropped by RemoveAllTask/RemoveAllEvent
	StaleTriggers int64
	NotifierKind  NotifierKind
	NotifierState NotifierState
	MainThreadID  int64
}
