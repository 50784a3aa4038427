package domain

// TodoItem is one entry of the todo list. Items are replaced, never mutated in place.
type TodoItem struct {
	Value string
}

func NewTodoItem(value string) TodoItem {
	return TodoItem{Value: value}
}

// IsEmpty reports whether the item carries no text at all. Whitespace counts as text.
func (t TodoItem) IsEmpty() bool {
	return t.Value == ""
}

// TodoItemsFromValues wraps raw strings into list items, preserving order.
func TodoItemsFromValues(values []string) []TodoItem {
	items := make([]TodoItem, 0, len(values))
	for _, value := range values {
		items = append(items, NewTodoItem(value))
	}
	return items
}
