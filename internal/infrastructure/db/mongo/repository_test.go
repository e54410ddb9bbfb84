package mongo

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/vaultline/authd/internal/core/domain"
)

func TestMapErr(t *testing.T) {
	if err := mapErr("op", nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if err := mapErr("op", mongo.ErrNoDocuments); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	dup := mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key"}}}
	if err := mapErr("op", dup); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
	other := errors.New("boom")
	if err := mapErr("op", other); !errors.Is(err, other) || err.Error() != "op: boom" {
		t.Errorf("expected wrapped error, got %v", err)
	}
}

func TestConsumeFilter_GuardsCapacity(t *testing.T) {
	f := consumeFilter("lic-1")
	if f["_id"] != "lic-1" || f["active"] != true {
		t.Fatalf("unexpected filter: %v", f)
	}
	expr, ok := f["$expr"].(bson.M)
	if !ok {
		t.Fatalf("expected $expr, got %T", f["$expr"])
	}
	lt, ok := expr["$lt"].(bson.A)
	if !ok || len(lt) != 2 || lt[0] != "$current_users" || lt[1] != "$max_users" {
		t.Errorf("unexpected $expr: %v", expr)
	}
}

func TestReleaseFilter_FloorsAtZero(t *testing.T) {
	f := releaseFilter("lic-1")
	cond, ok := f["current_users"].(bson.M)
	if !ok || cond["$gt"] != 0 {
		t.Errorf("unexpected filter: %v", f)
	}
}

func TestExistsFilter(t *testing.T) {
	f := existsFilter("app-1", "alice", "")
	if or := f["$or"].(bson.A); len(or) != 1 {
		t.Errorf("expected username-only clause, got %v", or)
	}
	f = existsFilter("app-1", "alice", "a@example.com")
	if or := f["$or"].(bson.A); len(or) != 2 {
		t.Errorf("expected username and email clauses, got %v", or)
	}
}

func TestActiveMatchFilter_IncludesGlobal(t *testing.T) {
	f := activeMatchFilter("app-1", domain.BlacklistIP, "1.2.3.4")
	in := f["application_id"].(bson.M)["$in"].(bson.A)
	if fmt.Sprint(in) != "[app-1 ]" {
		t.Errorf("expected scoped and global ids, got %v", in)
	}
	if f["type"] != "ip" || f["active"] != true {
		t.Errorf("unexpected filter: %v", f)
	}
}

func TestExpiredFilter(t *testing.T) {
	now := time.Now()
	f := expiredFilter(now)
	if f["expires_at"].(bson.M)["$lt"] != now {
		t.Errorf("unexpected filter: %v", f)
	}
}
