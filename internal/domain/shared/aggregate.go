package shared

// AggregateRoot is an entity that records domain events while it changes.
// Events are published by the application layer once the aggregate is stored.
type AggregateRoot interface {
	Entity
	AddDomainEvent(event DomainEvent)
	GetDomainEvents() []DomainEvent
	ClearDomainEvents()
}

// BaseAggregateRoot adds the optimistic-lock version and the pending event
// list to BaseEntity. Repositories bump Version on every successful save.
type BaseAggregateRoot struct {
	BaseEntity
	Version int `gorm:"not null;default:1"`

	pending []DomainEvent
}

// NewBaseAggregateRoot starts a new aggregate at version 1.
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntity(), Version: 1}
}

func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.pending = append(a.pending, event)
}

func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent { return a.pending }

func (a *BaseAggregateRoot) ClearDomainEvents() { a.pending = nil }
