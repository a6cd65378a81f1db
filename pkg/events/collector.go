package events

// Collector gathers the events one use case raises so they can be
// published together. The zero value is ready to use.
type Collector struct {
	pending []DomainEvent
}

// Record queues events in order. Nil events are ignored.
func (c *Collector) Record(evts ...DomainEvent) {
	for _, e := range evts {
		if e != nil {
			c.pending = append(c.pending, e)
		}
	}
}

// Len reports how many events are queued.
func (c *Collector) Len() int { return len(c.pending) }

// Drain hands over the queued events and empties the collector.
func (c *Collector) Drain() []DomainEvent {
	out := c.pending
	c.pending = nil
	return out
}
