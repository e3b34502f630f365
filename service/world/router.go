package world

// Router computes the audience for each lifecycle event and hands delivery
// to the fan-out queue. Audiences are snapshotted from the connection table
// at call time rather than cached, so a connection that closed between the
// registry mutation and delivery simply isn't in the list.
type Router struct {
	conns   *ConnManager
	fanout  *Fanout
	metrics *Metrics
}

func NewRouter(conns *ConnManager, fanout *Fanout, metrics *Metrics) *Router {
	return &Router{conns: conns, fanout: fanout, metrics: metrics}
}

// NotifyJoin delivers the full roster (including the joiner) to the joining
// connection exactly once, and the new participant's state to everyone else.
func (r *Router) NotifyJoin(p Participant, roster []Participant, joiner *Client) {
	r.fanout.Unicast(joiner, BuildRoster(p.ID, roster))
	r.fanout.Broadcast(r.conns.SnapshotExcept(p.ID), BuildJoined(p))
	r.metrics.IncBroadcast(FrameJoined)
}

// NotifyUpdate delivers updated state to every connection except the
// originating one. The sender already applied its local input
// authoritatively, so echoing it back would only waste a frame.
func (r *Router) NotifyUpdate(p Participant) {
	r.fanout.Broadcast(r.conns.SnapshotExcept(p.ID), BuildUpdated(p))
	r.metrics.IncBroadcast(FrameUpdate)
}

// NotifyLeave delivers a departure event to every remaining connection.
// The leaver is already out of the table by the time this runs, so the
// plain snapshot is the whole audience.
func (r *Router) NotifyLeave(id string) {
	r.fanout.Broadcast(r.conns.Snapshot(), BuildLeft(id))
	r.metrics.IncBroadcast(FrameLeft)
}
