package store

// ID identifies a task. It is assigned once by the store and never reused.
type ID string

// Task is a single to-do entry.
type Task struct {
	ID   ID
	Text string
}

// Snapshot is an immutable view of the collection at one point in time.
type Snapshot struct {
	version uint64
	tasks   []Task
}

func newSnapshot(version uint64, tasks []Task) Snapshot {
	cp := make([]Task, len(tasks))
	copy(cp, tasks)
	return Snapshot{version: version, tasks: cp}
}

// Version increases with every mutation the store performs.
func (s Snapshot) Version() uint64 { return s.version }

func (s Snapshot) Len() int { return len(s.tasks) }

// At returns the task at position i in insertion order.
func (s Snapshot) At(i int) Task { return s.tasks[i] }

// Tasks returns a copy of the tasks in insertion order.
func (s Snapshot) Tasks() []Task {
	out := make([]Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Find looks up a task by id.
func (s Snapshot) Find(id ID) (Task, bool) {
	for _, t := range s.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}

// Index returns the position of id, or -1.
func (s Snapshot) Index(id ID) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}
