package bn

import "log/slog"

// Observer receives structural-change notifications from a Manager. It
// replaces hardwired diagnostic printing: the Manager announces what
// happened, the observer decides where it goes. Implementations must not
// call back into the Manager.
type Observer interface {
	NodeAdded(n *Node)
	EdgeCreated(parent, child *Node)
	EdgeRemoved(parent, child *Node)
	// EdgeReversed reports the original orientation.
	EdgeReversed(parent, child *Node)
	CPDRebuilt(n *Node)
	OrderRecomputed(order []*Node)
}

// NopObserver discards all notifications.
type NopObserver struct{}

func (NopObserver) NodeAdded(*Node)           {}
func (NopObserver) EdgeCreated(*Node, *Node)  {}
func (NopObserver) EdgeRemoved(*Node, *Node)  {}
func (NopObserver) EdgeReversed(*Node, *Node) {}
func (NopObserver) CPDRebuilt(*Node)          {}
func (NopObserver) OrderRecomputed([]*Node)   {}

// SlogObserver logs every notification through a slog.Logger.
type SlogObserver struct {
	Logger *slog.Logger
}

func (o SlogObserver) log() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

func (o SlogObserver) NodeAdded(n *Node) {
	o.log().Info("node added", "attribute", n.Name())
}

func (o SlogObserver) EdgeCreated(parent, child *Node) {
	o.log().Info("edge created", "parent", parent.Name(), "child", child.Name())
}

func (o SlogObserver) EdgeRemoved(parent, child *Node) {
	o.log().Info("edge removed", "parent", parent.Name(), "child", child.Name())
}

func (o SlogObserver) EdgeReversed(parent, child *Node) {
	o.log().Info("edge reversed", "parent", parent.Name(), "child", child.Name())
}

func (o SlogObserver) CPDRebuilt(n *Node) {
	o.log().Debug("cpd rebuilt", "attribute", n.Name(), "parents", len(n.parents))
}

func (o SlogObserver) OrderRecomputed(order []*Node) {
	names := make([]string, len(order))
	for i, n := range order {
		names[i] = n.Name()
	}
	o.log().Debug("topological order recomputed", "order", names)
}

// MultiObserver fans every notification out to each observer in turn.
func MultiObserver(obs ...Observer) Observer {
	return multiObserver(obs)
}

type multiObserver []Observer

func (m multiObserver) NodeAdded(n *Node) {
	for _, o := range m {
		o.NodeAdded(n)
	}
}

func (m multiObserver) EdgeCreated(parent, child *Node) {
	for _, o := range m {
		o.EdgeCreated(parent, child)
	}
}

func (m multiObserver) EdgeRemoved(parent, child *Node) {
	for _, o := range m {
		o.EdgeRemoved(parent, child)
	}
}

func (m multiObserver) EdgeReversed(parent, child *Node) {
	for _, o := range m {
		o.EdgeReversed(parent, child)
	}
}

func (m multiObserver) CPDRebuilt(n *Node) {
	for _, o := range m {
		o.CPDRebuilt(n)
	}
}

func (m multiObserver) OrderRecomputed(order []*Node) {
	for _, o := range m {
		o.OrderRecomputed(order)
	}
}
