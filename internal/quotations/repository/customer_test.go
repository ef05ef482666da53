package repository

import (
	"testing"

	"github.com/google/uuid"
)

func strp(s string) *string { return &s }

func TestMergeContact_NonEmptyFieldsWin(t *testing.T) {
	existing := Customer{
		ID:    uuid.New(),
		Name:  "Sharma Traders",
		Email: strp("old@sharma.in"),
		Phone: strp("+919876543210"),
	}
	in := CustomerInput{
		Name:      "Sharma Traders",
		Email:     strp("new@sharma.in"),
		Address:   strp("12 MG Road, Pune"),
		GSTNumber: strp("27AAAPL1234C1ZV"),
	}

	merged := MergeContact(existing, in)

	if merged.Email == nil || *merged.Email != "new@sharma.in" {
		t.Fatalf("expected email to be overwritten, got %v", merged.Email)
	}
	if merged.Address == nil || *merged.Address != "12 MG Road, Pune" {
		t.Fatalf("expected address to be filled, got %v", merged.Address)
	}
	if merged.GSTNumber == nil || *merged.GSTNumber != "27AAAPL1234C1ZV" {
		t.Fatalf("expected gst number to be filled, got %v", merged.GSTNumber)
	}
}

func TestMergeContact_BlankInputNeverClearsStoredValues(t *testing.T) {
	existing := Customer{
		ID:        uuid.New(),
		Name:      "Sharma Traders",
		Email:     strp("old@sharma.in"),
		Phone:     strp("+919876543210"),
		Address:   strp("12 MG Road, Pune"),
		GSTNumber: strp("27AAAPL1234C1ZV"),
	}
	in := CustomerInput{
		Name:  "Sharma Traders",
		Email: strp(""),
		// phone, address and gst absent entirely
	}

	merged := MergeContact(existing, in)

	if merged.Email == nil || *merged.Email != "old@sharma.in" {
		t.Fatalf("blank email cleared stored value: %v", merged.Email)
	}
	if merged.Phone == nil || *merged.Phone != "+919876543210" {
		t.Fatalf("absent phone cleared stored value: %v", merged.Phone)
	}
	if merged.Address == nil || *merged.Address != "12 MG Road, Pune" {
		t.Fatalf("absent address cleared stored value: %v", merged.Address)
	}
	if merged.GSTNumber == nil || *merged.GSTNumber != "27AAAPL1234C1ZV" {
		t.Fatalf("absent gst number cleared stored value: %v", merged.GSTNumber)
	}
}

func TestMergeContact_IdentityFieldsUntouched(t *testing.T) {
	id := uuid.New()
	existing := Customer{ID: id, Name: "Sharma Traders"}
	in := CustomerInput{Name: "Renamed Traders", Phone: strp("+919812345678")}

	merged := MergeContact(existing, in)

	if merged.ID != id {
		t.Fatalf("merge changed customer id")
	}
	if merged.Name != "Sharma Traders" {
		t.Fatalf("merge changed identity name to %q", merged.Name)
	}
}
