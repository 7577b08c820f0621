package usecases_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sophialabs/apiprobe/internal/domain/datalist"
	"github.com/sophialabs/apiprobe/internal/domain/requestconfig"
	"github.com/sophialabs/apiprobe/internal/infrastructure/services"
	"github.com/sophialabs/apiprobe/internal/infrastructure/usecases"
	"github.com/sophialabs/apiprobe/internal/testutil"
)

func strPtr(s string) *string { return &s }

func TestManageConfigs_Lifecycle(t *testing.T) {
	repo := testutil.NewMemConfigRepository()
	uc := usecases.NewManageConfigsUseCase(repo, &testutil.NoopLogger{})
	ctx := context.Background()

	id, err := uc.CreateDraft(ctx, "  orders  ")
	if err != nil {
		t.Fatalf("CreateDraft: %v", err)
	}

	cfg, err := uc.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if cfg.Name != "orders" || cfg.Method != "GET" {
		t.Errorf("unexpected draft %+v", cfg)
	}

	listID := int64(7)
	err = uc.Update(ctx, id, requestconfig.Patch{
		Route: strPtr("api.test/orders"),
		Variables: map[string]requestconfig.VariableSource{
			"who": {Type: requestconfig.SourceDatalist, DatalistID: &listID, Values: []string{"inline"}},
		},
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	cfg, _ = uc.Get(ctx, id)
	if cfg.Route != "api.test/orders" || cfg.Name != "orders" {
		t.Errorf("patch not applied: %+v", cfg)
	}
	if v := cfg.Variables["who"]; v.Values != nil || v.DatalistID == nil || *v.DatalistID != 7 {
		t.Errorf("expected datalist values stripped, got %+v", v)
	}

	if err := uc.Delete(ctx, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := uc.Get(ctx, id); !errors.Is(err, requestconfig.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestManageConfigs_Rejections(t *testing.T) {
	repo := testutil.NewMemConfigRepository()
	uc := usecases.NewManageConfigsUseCase(repo, &testutil.NoopLogger{})
	ctx := context.Background()

	if _, err := uc.CreateDraft(ctx, "   "); !errors.Is(err, usecases.ErrInvalidRequest) {
		t.Errorf("blank name: expected ErrInvalidRequest, got %v", err)
	}

	id, _ := uc.CreateDraft(ctx, "a")
	_, _ = uc.CreateDraft(ctx, "b")

	if _, err := uc.CreateDraft(ctx, "a"); !errors.Is(err, requestconfig.ErrDuplicateName) {
		t.Errorf("duplicate draft: expected ErrDuplicateName, got %v", err)
	}
	if err := uc.Update(ctx, id, requestconfig.Patch{}); !errors.Is(err, usecases.ErrInvalidRequest) {
		t.Errorf("empty patch: expected ErrInvalidRequest, got %v", err)
	}
	if err := uc.Update(ctx, id, requestconfig.Patch{Name: strPtr(" ")}); !errors.Is(err, usecases.ErrInvalidRequest) {
		t.Errorf("blank rename: expected ErrInvalidRequest, got %v", err)
	}
	if err := uc.Update(ctx, id, requestconfig.Patch{Name: strPtr("b")}); !errors.Is(err, requestconfig.ErrDuplicateName) {
		t.Errorf("rename clash: expected ErrDuplicateName, got %v", err)
	}
	if err := uc.Update(ctx, 404, requestconfig.Patch{Route: strPtr("x")}); !errors.Is(err, requestconfig.ErrNotFound) {
		t.Errorf("missing config: expected ErrNotFound, got %v", err)
	}
	if err := uc.Delete(ctx, 404); !errors.Is(err, requestconfig.ErrNotFound) {
		t.Errorf("missing delete: expected ErrNotFound, got %v", err)
	}
}

func TestManageConfigs_ListNewestFirst(t *testing.T) {
	uc := usecases.NewManageConfigsUseCase(testutil.NewMemConfigRepository(), &testutil.NoopLogger{})
	ctx := context.Background()

	first, _ := uc.CreateDraft(ctx, "first")
	_, _ = uc.CreateDraft(ctx, "second")
	_ = uc.Update(ctx, first, requestconfig.Patch{Field: strPtr("data")})

	configs, err := uc.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(configs) != 2 || configs[0].Name != "first" {
		t.Errorf("expected recently updated config first, got %v", configs)
	}
}

func TestManageDatalists_CreateAndEntries(t *testing.T) {
	uc := usecases.NewManageDatalistsUseCase(testutil.NewMemDatalistRepository(), &testutil.NoopLogger{})
	ctx := context.Background()

	id, err := uc.Create(ctx, "colors", []string{"red", "green"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	values, err := uc.Entries(ctx, id)
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if strings.Join(values, ",") != "red,green" {
		t.Errorf("unexpected entries %v", values)
	}

	emptyID, err := uc.Create(ctx, "empty", []string{})
	if err != nil {
		t.Fatalf("Create empty: %v", err)
	}
	values, _ = uc.Entries(ctx, emptyID)
	if values == nil || len(values) != 0 {
		t.Errorf("expected empty non-nil entries, got %#v", values)
	}

	if _, err := uc.Create(ctx, "colors", []string{"x"}); !errors.Is(err, datalist.ErrDuplicateName) {
		t.Errorf("expected ErrDuplicateName, got %v", err)
	}
	if _, err := uc.Create(ctx, "nil", nil); !errors.Is(err, usecases.ErrInvalidRequest) {
		t.Errorf("nil values: expected ErrInvalidRequest, got %v", err)
	}
	if _, err := uc.Create(ctx, "", []string{"x"}); !errors.Is(err, usecases.ErrInvalidRequest) {
		t.Errorf("blank name: expected ErrInvalidRequest, got %v", err)
	}

	lists, _ := uc.List(ctx)
	if len(lists) != 2 || lists[0].Name != "empty" {
		t.Errorf("expected newest first, got %v", lists)
	}

	if err := uc.Delete(ctx, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := uc.Entries(ctx, id); !errors.Is(err, datalist.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestManageDatalists_ImportCSV(t *testing.T) {
	uc := usecases.NewManageDatalistsUseCase(testutil.NewMemDatalistRepository(), &testutil.NoopLogger{})
	ctx := context.Background()

	csv := "city,country\nParis,FR\n,DE\nLyon,FR\n"
	id, count, err := uc.ImportCSV(ctx, "cities", "city", strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ImportCSV: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 values, got %d", count)
	}
	values, _ := uc.Entries(ctx, id)
	if strings.Join(values, ",") != "Paris,Lyon" {
		t.Errorf("unexpected values %v", values)
	}

	_, _, err = uc.ImportCSV(ctx, "blank", "country", strings.NewReader("city,country\nParis,\n"))
	if !errors.Is(err, services.ErrEmptyColumn) {
		t.Errorf("expected ErrEmptyColumn, got %v", err)
	}

	_, _, err = uc.ImportCSV(ctx, "nocol", "", strings.NewReader(csv))
	if !errors.Is(err, usecases.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestManageDatalists_CSVColumns(t *testing.T) {
	uc := usecases.NewManageDatalistsUseCase(testutil.NewMemDatalistRepository(), &testutil.NoopLogger{})

	columns, err := uc.CSVColumns(strings.NewReader(" city , country\nParis,FR\n"))
	if err != nil {
		t.Fatalf("CSVColumns: %v", err)
	}
	if strings.Join(columns, "|") != "city|country" {
		t.Errorf("unexpected columns %v", columns)
	}

	if _, err := uc.CSVColumns(strings.NewReader("")); !errors.Is(err, services.ErrNoHeader) {
		t.Errorf("expected ErrNoHeader, got %v", err)
	}
}
