package executor

// State 执行器状态
type State int

const (
	Idle State = iota
	Starting
	Running
	ResultReady
	ErrorRaised
	Finished
)

var stateNames = map[State]string{
	Idle:        "IDLE",
	Starting:    "STARTING",
	Running:     "RUNNING",
	ResultReady: "RESULT_READY",
	ErrorRaised: "ERROR_RAISED",
	Finished:    "FINISHED",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}
