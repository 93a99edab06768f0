package handler

// ActorResponse represents an actor in API responses
type ActorResponse struct {
	ID              string   `json:"id"`
	CharacterID     string   `json:"character_id,omitempty"`
	PlayerID        int64    `json:"player_id"`
	Name            string   `json:"name"`
	RoleplayMode    bool     `json:"roleplay_mode"`
	SavingsFraction *float64 `json:"savings_fraction,omitempty"`
	CreatedAt       string   `json:"created_at"`
	UpdatedAt       string   `json:"updated_at"`
}

// AccountResponse represents a ledger account in API responses
type AccountResponse struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Book      string `json:"book"`
	OwnerID   string `json:"owner_id,omitempty"`
	Name      string `json:"name"`
	Balance   int64  `json:"balance"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// StatementLineResponse represents one row of an account statement
type StatementLineResponse struct {
	JournalID   string `json:"journal_id"`
	EntryDate   string `json:"entry_date"`
	Description string `json:"description"`
	Debit       int64  `json:"debit"`
	Credit      int64  `json:"credit"`
}

// TreasuryResponse represents the Treasury Fund balance
type TreasuryResponse struct {
	Balance int64 `json:"balance"`
}

// JobResponse represents a delivery job in API responses
type JobResponse struct {
	ID                string  `json:"id"`
	Cargo             *string `json:"cargo,omitempty"`
	SourceZoneID      string  `json:"source_zone_id,omitempty"`
	DestinationZoneID string  `json:"destination_zone_id,omitempty"`
	QuantityRequested int64   `json:"quantity_requested"`
	QuantityFulfilled int64   `json:"quantity_fulfilled"`
	CompletionBonus   int64   `json:"completion_bonus"`
	BonusMultiplier   float64 `json:"bonus_multiplier"`
	RoleplayOnly      bool    `json:"roleplay_only"`
	ExpiresAt         string  `json:"expires_at"`
	CompletedAt       string  `json:"completed_at,omitempty"`
	CreatedAt         string  `json:"created_at"`
}

// DeliveryResponse represents one recorded delivery in API responses
type DeliveryResponse struct {
	ID          string `json:"id"`
	JobID       string `json:"job_id"`
	ActorID     string `json:"actor_id"`
	Quantity    int64  `json:"quantity"`
	DeliveredAt string `json:"delivered_at"`
}

// RuleResponse represents a subsidy rule in API responses
type RuleResponse struct {
	ID                string  `json:"id"`
	Priority          int     `json:"priority"`
	Active            bool    `json:"active"`
	Kind              string  `json:"kind"`
	Rate              float64 `json:"rate"`
	FlatAmount        int64   `json:"flat_amount"`
	Cargo             *string `json:"cargo,omitempty"`
	SourceZoneID      string  `json:"source_zone_id,omitempty"`
	DestinationZoneID string  `json:"destination_zone_id,omitempty"`
	RequiresOnTime    bool    `json:"requires_on_time"`
	ScalesWithDamage  bool    `json:"scales_with_damage"`
	CreatedAt         string  `json:"created_at"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=10" binding:"min=1,max=100"`
}

// LimitParams represents a row limit for list endpoints
type LimitParams struct {
	Limit int `form:"limit,default=50" binding:"min=1,max=500"`
}
