package store

import "context"

// MemoryBackend keeps tasks in a slice. It is the default backend.
type MemoryBackend struct {
	tasks []Task
}

// NewMemoryBackend returns an empty backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

func (b *MemoryBackend) Append(ctx context.Context, t Task) error {
	_ = ctx
	b.tasks = append(b.tasks, t)
	return nil
}

func (b *MemoryBackend) SetText(ctx context.Context, id ID, text string) (bool, error) {
	_ = ctx
	i := b.index(id)
	if i < 0 {
		return false, nil
	}
	b.tasks[i].Text = text
	return true, nil
}

func (b *MemoryBackend) Remove(ctx context.Context, id ID) (bool, error) {
	_ = ctx
	i := b.index(id)
	if i < 0 {
		return false, nil
	}
	b.tasks = append(b.tasks[:i:i], b.tasks[i+1:]...)
	return true, nil
}

func (b *MemoryBackend) Contains(ctx context.Context, id ID) (bool, error) {
	_ = ctx
	return b.index(id) >= 0, nil
}

func (b *MemoryBackend) All(ctx context.Context) ([]Task, error) {
	_ = ctx
	out := make([]Task, len(b.tasks))
	copy(out, b.tasks)
	return out, nil
}

func (b *MemoryBackend) index(id ID) int {
	for i, t := range b.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}
