package journal

// ListOptions provides filtering options for listing journal entries.
type ListOptions struct {
	ProjectID *uint64
	Method    string
	Status    Status
	Limit     int
	Offset    int
}
