package ledger

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"splitledger-backend/models"
)

var (
	alice = uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	bob   = uuid.MustParse("00000000-0000-0000-0000-00000000000b")
	carol = uuid.MustParse("00000000-0000-0000-0000-00000000000c")
	dave  = uuid.MustParse("00000000-0000-0000-0000-00000000000d")
	eve   = uuid.MustParse("00000000-0000-0000-0000-00000000000e")
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name     string
		strategy models.SplitStrategy
		amount   int64
		payer    uuid.UUID
		active   []uuid.UUID
		entries  []models.StrategyEntry
		wantErr  error
		want     map[uuid.UUID]int64
	}{
		{
			name:     "equal parts four members",
			strategy: models.StrategyEqualParts,
			amount:   500,
			payer:    alice,
			active:   []uuid.UUID{alice, bob, carol, dave},
			want:     map[uuid.UUID]int64{alice: 375, bob: -125, carol: -125, dave: -125},
		},
		{
			name:     "equal parts five members",
			strategy: models.StrategyEqualParts,
			amount:   500,
			payer:    alice,
			active:   []uuid.UUID{alice, bob, carol, dave, eve},
			want:     map[uuid.UUID]int64{alice: 400, bob: -100, carol: -100, dave: -100, eve: -100},
		},
		{
			name:     "equal parts truncates the remainder",
			strategy: models.StrategyEqualParts,
			amount:   100,
			payer:    alice,
			active:   []uuid.UUID{alice, bob, carol},
			// 100/3 = 33, one unit is charged to nobody
			want: map[uuid.UUID]int64{alice: 66, bob: -33, carol: -33},
		},
		{
			name:     "equal parts single member nets to zero",
			strategy: models.StrategyEqualParts,
			amount:   500,
			payer:    alice,
			active:   []uuid.UUID{alice},
			want:     map[uuid.UUID]int64{alice: 0},
		},
		{
			name:     "percentage twenty eighty",
			strategy: models.StrategyPercentage,
			amount:   500,
			payer:    alice,
			active:   []uuid.UUID{alice, bob},
			entries: []models.StrategyEntry{
				{UserID: alice, Value: 20},
				{UserID: bob, Value: 80},
			},
			want: map[uuid.UUID]int64{alice: 400, bob: -400},
		},
		{
			name:     "percentage payer not in entries",
			strategy: models.StrategyPercentage,
			amount:   500,
			payer:    alice,
			active:   []uuid.UUID{alice, bob},
			entries:  []models.StrategyEntry{{UserID: bob, Value: 100}},
			want:     map[uuid.UUID]int64{alice: 500, bob: -500},
		},
		{
			name:     "percentage truncates per share",
			strategy: models.StrategyPercentage,
			amount:   99,
			payer:    alice,
			active:   []uuid.UUID{alice, bob},
			entries: []models.StrategyEntry{
				{UserID: alice, Value: 50},
				{UserID: bob, Value: 50},
			},
			// each charge is 99*50/100 = 49, payer credited 98
			want: map[uuid.UUID]int64{alice: 49, bob: -49},
		},
		{
			name:     "custom exact amounts",
			strategy: models.StrategyCustom,
			amount:   500,
			payer:    alice,
			active:   []uuid.UUID{alice, bob},
			entries: []models.StrategyEntry{
				{UserID: alice, Value: 230},
				{UserID: bob, Value: 270},
			},
			want: map[uuid.UUID]int64{alice: 270, bob: -270},
		},
		{
			name:     "zero amount",
			strategy: models.StrategyEqualParts,
			amount:   0,
			payer:    alice,
			active:   []uuid.UUID{alice, bob},
			wantErr:  ErrInvalidAmount,
		},
		{
			name:     "negative amount",
			strategy: models.StrategyEqualParts,
			amount:   -500,
			payer:    alice,
			active:   []uuid.UUID{alice, bob},
			wantErr:  ErrInvalidAmount,
		},
		{
			name:     "payer not active",
			strategy: models.StrategyEqualParts,
			amount:   500,
			payer:    eve,
			active:   []uuid.UUID{alice, bob},
			wantErr:  ErrNotAMember,
		},
		{
			name:     "percentages must sum to one hundred",
			strategy: models.StrategyPercentage,
			amount:   500,
			payer:    alice,
			active:   []uuid.UUID{alice, bob},
			entries: []models.StrategyEntry{
				{UserID: alice, Value: 30},
				{UserID: bob, Value: 60},
			},
			wantErr: ErrInvalidStrategyData,
		},
		{
			name:     "custom must sum to the amount",
			strategy: models.StrategyCustom,
			amount:   500,
			payer:    alice,
			active:   []uuid.UUID{alice, bob},
			entries: []models.StrategyEntry{
				{UserID: alice, Value: 230},
				{UserID: bob, Value: 230},
			},
			wantErr: ErrInvalidStrategyData,
		},
		{
			name:     "entries must name active members",
			strategy: models.StrategyCustom,
			amount:   500,
			payer:    alice,
			active:   []uuid.UUID{alice, bob},
			entries: []models.StrategyEntry{
				{UserID: alice, Value: 250},
				{UserID: eve, Value: 250},
			},
			wantErr: ErrInvalidStrategyData,
		},
		{
			name:     "duplicate entries rejected",
			strategy: models.StrategyPercentage,
			amount:   500,
			payer:    alice,
			active:   []uuid.UUID{alice, bob},
			entries: []models.StrategyEntry{
				{UserID: bob, Value: 50},
				{UserID: bob, Value: 50},
			},
			wantErr: ErrInvalidStrategyData,
		},
		{
			name:     "negative entry value rejected",
			strategy: models.StrategyCustom,
			amount:   500,
			payer:    alice,
			active:   []uuid.UUID{alice, bob},
			entries: []models.StrategyEntry{
				{UserID: alice, Value: 600},
				{UserID: bob, Value: -100},
			},
			wantErr: ErrInvalidStrategyData,
		},
		{
			name:     "percentage requires entries",
			strategy: models.StrategyPercentage,
			amount:   500,
			payer:    alice,
			active:   []uuid.UUID{alice, bob},
			wantErr:  ErrInvalidStrategyData,
		},
		{
			name:     "unknown strategy",
			strategy: models.SplitStrategy("HALVES"),
			amount:   500,
			payer:    alice,
			active:   []uuid.UUID{alice, bob},
			wantErr:  ErrInvalidStrategyData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.strategy, tt.amount, tt.payer, tt.active, tt.entries)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Evaluate() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Evaluate() unexpected error: %v", err)
			}

			if len(got) != len(tt.want) {
				t.Fatalf("Evaluate() returned %d deltas, want %d: %v", len(got), len(tt.want), got)
			}
			var sum int64
			for id, delta := range got {
				if delta != tt.want[id] {
					t.Errorf("delta[%s] = %d, want %d", id, delta, tt.want[id])
				}
				sum += delta
			}
			if sum != 0 {
				t.Errorf("deltas sum to %d, want 0", sum)
			}
		})
	}
}

func TestSuggestSettlements(t *testing.T) {
	names := map[uuid.UUID]string{alice: "Alice", bob: "Bob", carol: "Carol", dave: "Dave"}

	balances := []models.Balance{
		{UserID: alice, CurrentBalance: 600},
		{UserID: bob, CurrentBalance: -400},
		{UserID: carol, CurrentBalance: -200},
		{UserID: dave, CurrentBalance: 0},
	}

	got := suggestSettlements(balances, names)
	if len(got) != 2 {
		t.Fatalf("suggestSettlements() returned %d transfers, want 2: %v", len(got), got)
	}

	// Largest debtor pays first.
	if got[0].FromID != bob || got[0].ToID != alice || got[0].Amount != 400 {
		t.Errorf("first transfer = %s->%s %d, want Bob->Alice 400", got[0].FromName, got[0].ToName, got[0].Amount)
	}
	if got[1].FromID != carol || got[1].ToID != alice || got[1].Amount != 200 {
		t.Errorf("second transfer = %s->%s %d, want Carol->Alice 200", got[1].FromName, got[1].ToName, got[1].Amount)
	}

	var moved int64
	for _, s := range got {
		moved += s.Amount
	}
	if moved != 600 {
		t.Errorf("total moved = %d, want 600", moved)
	}
}

func TestSuggestSettlementsAllSettled(t *testing.T) {
	got := suggestSettlements([]models.Balance{
		{UserID: alice, CurrentBalance: 0},
		{UserID: bob, CurrentBalance: 0},
	}, nil)
	if len(got) != 0 {
		t.Fatalf("suggestSettlements() = %v, want none", got)
	}
}
