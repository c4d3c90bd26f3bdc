package leave

const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

type transition struct {
	from string
	to   string
}

// transitionSigns is the full decision table. The value is the multiplier
// applied to the request's day count against the employee's used-leave
// counter when the transition commits. Pairs absent from the table are not
// allowed; in particular nothing ever moves back to PENDING.
var transitionSigns = map[transition]int{
	{from: StatusPending, to: StatusApproved}:  1,
	{from: StatusPending, to: StatusRejected}:  0,
	{from: StatusApproved, to: StatusRejected}: -1, // reversal refunds the days
	{from: StatusRejected, to: StatusApproved}: 1,  // reversal consumes the days
	{from: StatusApproved, to: StatusApproved}: 0,  // idempotent re-decision
	{from: StatusRejected, to: StatusRejected}: 0,  // idempotent re-decision
}

// transitionDelta reports the used-leave adjustment for moving a request of
// the given size from one status to another, and whether that move is
// allowed at all.
func transitionDelta(from, to string, days int) (int, bool) {
	sign, ok := transitionSigns[transition{from: from, to: to}]
	if !ok {
		return 0, false
	}
	return sign * days, true
}
