package storage

import (
	"testing"
	"time"

	apperrors "github.com/daemonn69/somnia-jump/internal/platform/errors"
)

func TestNormalizeIdentity(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "0xAbCdEf", want: "0xabcdef"},
		{in: "  0XABC  ", want: "0xabc"},
		{in: "", want: ""},
	}
	for _, tc := range tests {
		if got := NormalizeIdentity(tc.in); got != tc.want {
			t.Fatalf("NormalizeIdentity(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestMemberEncoding(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	member, err := EncodeMember(Entry{Identity: "0xA", Score: 42, RecordedAt: at})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if member.Score != 42 {
		t.Fatalf("score = %v, want 42", member.Score)
	}
	if want := `{"address":"0xA","timestamp":1772366400000}`; member.Payload != want {
		t.Fatalf("payload = %s, want %s", member.Payload, want)
	}
	entry, err := DecodeMember(member)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if entry.Identity != "0xA" || entry.Score != 42 || !entry.RecordedAt.Equal(at) {
		t.Fatalf("entry = %+v", entry)
	}
}

func TestDecodeMemberParseFailure(t *testing.T) {
	for _, payload := range []string{"nope", `{"timestamp":1}`, `[]`} {
		_, err := DecodeMember(Member{Payload: payload, Score: 1})
		if apperrors.GetCode(err) != apperrors.CodeParseFailure {
			t.Fatalf("payload %q: code = %v, want PARSE_FAILURE", payload, apperrors.GetCode(err))
		}
	}
}
