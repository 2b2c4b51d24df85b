package expense

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func TestSheets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Query().Get("action") != "getSheets" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"sheets": []string{"Шаблон", "Объект 1", "Сводка"}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, zap.NewNop())
	sheets, err := c.Sheets(context.Background())
	if err != nil {
		t.Fatalf("sheets: %v", err)
	}
	want := []string{"Объект 1"}
	if got := FilterSheets(sheets, []string{"Шаблон", "Сводка"}); !reflect.DeepEqual(got, want) {
		t.Fatalf("filtered: got %v, want %v", got, want)
	}
}

func TestAddExpense(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method: got %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Write([]byte(`{"result":"success","message":"ok"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, zap.NewNop())
	err := c.AddExpense(context.Background(), Expense{
		Sheet:       "Объект 1",
		Contributor: "ООО Поставщик",
		Label:       "Цемент",
		Amount:      decimal.RequireFromString("1500.5"),
		Date:        time.Date(2024, 3, 7, 12, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("add expense: %v", err)
	}
	want := map[string]interface{}{
		"action":     "addExpense",
		"sheetName":  "Объект 1",
		"contractor": "ООО Поставщик",
		"expense":    "Цемент",
		"amount":     1500.5,
		"date":       "07.03.2024",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("body: got %v, want %v", got, want)
	}
}

func TestAddExpenseServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":"error","message":"Лист не найден"}`))
	}))
	defer srv.Close()

	err := NewClient(srv.URL, time.Second, zap.NewNop()).AddExpense(context.Background(), Expense{Amount: decimal.NewFromInt(1)})
	var se *ServiceError
	if !errors.As(err, &se) || se.Message != "Лист не найден" {
		t.Fatalf("expected ServiceError, got %v", err)
	}
}

func TestAddExpenseTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	err := NewClient(srv.URL, 50*time.Millisecond, zap.NewNop()).AddExpense(context.Background(), Expense{Amount: decimal.NewFromInt(1)})
	if err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestPage(t *testing.T) {
	sheets := []string{"a", "b", "c", "d", "e", "f", "g"}
	cases := []struct {
		page       int
		start      int
		items      []string
		prev, next bool
	}{
		{0, 0, []string{"a", "b", "c"}, false, true},
		{1, 3, []string{"d", "e", "f"}, true, true},
		{2, 6, []string{"g"}, true, false},
		{9, 6, []string{"g"}, true, false},
		{-1, 0, []string{"a", "b", "c"}, false, true},
	}
	for _, c := range cases {
		start, items, prev, next := Page(sheets, c.page, PageSize)
		if start != c.start || !reflect.DeepEqual(items, c.items) || prev != c.prev || next != c.next {
			t.Errorf("Page(%d) = %d %v %v %v", c.page, start, items, prev, next)
		}
	}
	if _, items, prev, next := Page(nil, 0, PageSize); items != nil || prev || next {
		t.Fatal("empty page should be empty")
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"1500", "1500", true},
		{"1 500,50 руб", "1500.5", true},
		{"-20", "-20", true},
		{"abc", "0", false},
		{"", "0", false},
		{"1.2.3", "0", false},
	}
	for _, c := range cases {
		got, ok := ParseAmount(c.in)
		if ok != c.ok || !got.Equal(decimal.RequireFromString(c.want)) {
			t.Errorf("ParseAmount(%q) = %s, %v", c.in, got, ok)
		}
	}
}
