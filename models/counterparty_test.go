package models

import "testing"

func TestContractNumbering(t *testing.T) {
	var c Counterparty
	if n := c.NextContractNumber(); n != 1 {
		t.Fatalf("empty counterparty: got %d, want 1", n)
	}

	c.Contracts = append(c.Contracts, Contract{Number: 1})
	if n := c.NextContractNumber(); n != 2 {
		t.Fatalf("after #1: got %d, want 2", n)
	}

	// Deleting the only contract makes #1 available again.
	c.Contracts = nil
	if n := c.NextContractNumber(); n != 1 {
		t.Fatalf("after delete: got %d, want 1", n)
	}

	// Gaps below the maximum are never filled.
	c.Contracts = []Contract{{Number: 1}, {Number: 3}}
	if n := c.NextContractNumber(); n != 4 {
		t.Fatalf("with gap: got %d, want 4", n)
	}
}

func TestAppendixNumberingIsIndependent(t *testing.T) {
	c := Counterparty{
		Contracts:  []Contract{{Number: 1}, {Number: 2}},
		Appendices: []Appendix{{Number: 1, ContractNumber: 1}},
	}
	if n := c.NextAppendixNumber(); n != 2 {
		t.Fatalf("got %d, want 2", n)
	}
	last, ok := c.LastContract()
	if !ok || last.Number != 2 {
		t.Fatalf("last contract: got %+v, %v", last, ok)
	}
	if _, ok := c.FindAppendix(5); ok {
		t.Fatal("found nonexistent appendix")
	}
}

func TestRoleAtLeast(t *testing.T) {
	cases := []struct {
		role Role
		min  Role
		want bool
	}{
		{RoleVisitor, RoleVisitor, true},
		{RoleVisitor, RoleManager, false},
		{RoleManager, RoleManager, true},
		{RoleManager, RoleAdmin, false},
		{RoleAdmin, RoleManager, true},
		{Role("root"), RoleVisitor, false},
	}
	for _, c := range cases {
		if got := c.role.AtLeast(c.min); got != c.want {
			t.Errorf("%s.AtLeast(%s) = %v, want %v", c.role, c.min, got, c.want)
		}
	}
}
