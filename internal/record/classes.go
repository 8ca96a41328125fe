package record

// Classes groups records by class name.
//
// Class names are kept in order of first appearance and a class only exists
// once a record has been added to it, so empty classes never show up.
type Classes struct {
	order   []string
	records map[string][]*Record
}

// NewClasses creates an empty grouping.
func NewClasses() *Classes {
	return &Classes{records: make(map[string][]*Record)}
}

// Add appends rec to class.
func (c *Classes) Add(class string, rec *Record) {
	if _, ok := c.records[class]; !ok {
		c.order = append(c.order, class)
	}
	c.records[class] = append(c.records[class], rec)
}

// Merge appends every record of other, preserving its class and record order.
func (c *Classes) Merge(other *Classes) {
	for _, class := range other.order {
		for _, rec := range other.records[class] {
			c.Add(class, rec)
		}
	}
}

// Names returns the class names in order of first appearance.
func (c *Classes) Names() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Records returns the records of class in insertion order.
func (c *Classes) Records(class string) []*Record {
	return c.records[class]
}

// Len returns the number of classes.
func (c *Classes) Len() int {
	return len(c.order)
}

// Total returns the number of records across all classes.
func (c *Classes) Total() int {
	n := 0
	for _, recs := range c.records {
		n += len(recs)
	}
	return n
}

// All returns every record, class by class.
func (c *Classes) All() []*Record {
	out := make([]*Record, 0, c.Total())
	for _, class := range c.order {
		out = append(out, c.records[class]...)
	}
	return out
}

// Counts returns the number of records per class.
func (c *Classes) Counts() map[string]int {
	out := make(map[string]int, len(c.order))
	for class, recs := range c.records {
		out[class] = len(recs)
	}
	return out
}
