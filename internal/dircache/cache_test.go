package dircache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"dsadmin/internal/directory"
)

func tempCache(t *testing.T, ttl time.Duration) *Cache {
	t.Helper()
	path := filepath.Join(t.TempDir(), "directory-cache.db")
	c, err := OpenAt(path, ttl, zerolog.Nop())
	if err != nil {
		t.Fatalf("OpenAt failed: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func testPrincipals() []directory.Principal {
	return []directory.Principal{
		{
			Username:          "asmith",
			DisplayName:       "Alice Smith",
			GivenName:         "Alice",
			Surname:           "Smith",
			Email:             "asmith@example.org",
			PrincipalName:     "asmith@corp.example.org",
			Department:        "Engineering",
			DistinguishedName: "CN=Alice Smith,OU=Users,DC=corp,DC=example,DC=org",
			Enabled:           true,
			Memberships: []directory.Membership{
				{GroupName: "Engineers", DistinguishedName: "CN=Engineers,OU=Groups,DC=corp,DC=example,DC=org"},
			},
		},
		{Username: "bjones", DisplayName: "Bob Jones", Enabled: true, Memberships: []directory.Membership{}},
		{Username: "cdoe", DisplayName: "Carol Doe", Enabled: false, Memberships: []directory.Membership{}},
	}
}

func TestPrincipals_RoundTrip(t *testing.T) {
	c := tempCache(t, time.Hour)

	want := testPrincipals()
	c.SetPrincipals(want)

	got, ok := c.Principals()
	if !ok {
		t.Fatal("expected cache hit after SetPrincipals")
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("principals mismatch (-want +got):\n%s", diff)
	}
}

func TestPrincipals_MissWhenNeverRefreshed(t *testing.T) {
	c := tempCache(t, time.Hour)

	if _, ok := c.Principals(); ok {
		t.Error("expected miss on empty cache")
	}
	if _, ok := c.Groups(); ok {
		t.Error("expected miss on empty cache")
	}
}

func TestPrincipals_MissAtTTLBoundary(t *testing.T) {
	const ttl = 120 * time.Minute
	c := tempCache(t, ttl)

	base := time.Now()
	c.now = func() time.Time { return base }
	c.SetPrincipals(testPrincipals())

	// Read within the TTL: hit.
	c.now = func() time.Time { return base.Add(60 * time.Minute) }
	if _, ok := c.Principals(); !ok {
		t.Error("expected hit 60m after refresh with 120m TTL")
	}

	// Read exactly at the TTL: miss.
	c.now = func() time.Time { return base.Add(ttl) }
	if _, ok := c.Principals(); ok {
		t.Error("expected miss exactly at the TTL boundary")
	}

	// And after it.
	c.now = func() time.Time { return base.Add(121 * time.Minute) }
	if _, ok := c.Principals(); ok {
		t.Error("expected miss past the TTL")
	}
}

func TestSetPrincipals_WholesaleReplace(t *testing.T) {
	c := tempCache(t, time.Hour)

	c.SetPrincipals(testPrincipals())

	want := []directory.Principal{
		{Username: "zdoe", DisplayName: "Zo Doe", Enabled: true, Memberships: []directory.Membership{}},
	}
	c.SetPrincipals(want)

	got, ok := c.Principals()
	if !ok {
		t.Fatal("expected cache hit")
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("stale rows survived the replace (-want +got):\n%s", diff)
	}

	stats := c.GetStats()
	if stats.Principals.ItemCount != 1 {
		t.Errorf("expected item count 1, got %d", stats.Principals.ItemCount)
	}
}

func TestSetPrincipal_PatchIsolation(t *testing.T) {
	c := tempCache(t, 120*time.Minute)

	base := time.Now()
	c.now = func() time.Time { return base }
	c.SetPrincipals(testPrincipals())

	before := c.GetStats().Principals

	// Patch one existing row well after the refresh.
	c.now = func() time.Time { return base.Add(61 * time.Minute) }
	patched := directory.Principal{
		Username:    "bjones",
		DisplayName: "Robert Jones",
		Enabled:     false,
		Memberships: []directory.Membership{},
	}
	c.SetPrincipal(patched)

	after := c.GetStats().Principals
	if !after.LastRefresh.Equal(*before.LastRefresh) {
		t.Error("targeted patch must not touch the bucket refresh timestamp")
	}

	got, ok := c.Principals()
	if !ok {
		t.Fatal("expected hit, metadata untouched by patch")
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 rows after patching an existing identifier, got %d", len(got))
	}
	for _, p := range got {
		if p.Username == "bjones" {
			if p.DisplayName != "Robert Jones" || p.Enabled {
				t.Errorf("patched row not updated: %+v", p)
			}
		}
		if p.Username == "asmith" && p.DisplayName != "Alice Smith" {
			t.Errorf("unrelated row changed: %+v", p)
		}
	}

	// Patching a new identifier adds a fourth row.
	c.SetPrincipal(directory.Principal{Username: "dnew", DisplayName: "Dana New", Enabled: true, Memberships: []directory.Membership{}})
	got, ok = c.Principals()
	if !ok {
		t.Fatal("expected hit")
	}
	if len(got) != 4 {
		t.Fatalf("expected 4 rows after patching a new identifier, got %d", len(got))
	}
}

func TestGroups_RoundTrip(t *testing.T) {
	c := tempCache(t, time.Hour)

	want := []directory.Group{
		{Name: "Engineers", Description: "Engineering staff", DistinguishedName: "CN=Engineers,OU=Groups,DC=corp,DC=example,DC=org"},
		{Name: "Helpdesk"},
	}
	c.SetGroups(want)

	got, ok := c.Groups()
	if !ok {
		t.Fatal("expected cache hit after SetGroups")
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("groups mismatch (-want +got):\n%s", diff)
	}
}

func TestEmptyCollection_TreatedAsMiss(t *testing.T) {
	c := tempCache(t, time.Hour)

	c.SetGroups(nil)

	if !c.Valid(BucketGroups) {
		t.Fatal("metadata should be fresh after SetGroups(nil)")
	}
	if _, ok := c.Groups(); ok {
		t.Error("valid-but-empty bucket must read as a miss")
	}
}

func TestClear_InvalidationCompleteness(t *testing.T) {
	c := tempCache(t, time.Hour)

	c.SetPrincipals(testPrincipals())
	c.SetGroups([]directory.Group{{Name: "Engineers"}})

	c.Clear()

	if _, ok := c.Principals(); ok {
		t.Error("expected principal miss after Clear")
	}
	if _, ok := c.Groups(); ok {
		t.Error("expected group miss after Clear")
	}

	stats := c.GetStats()
	if stats.Principals.LastRefresh != nil || stats.Principals.ItemCount != 0 {
		t.Errorf("expected zeroed principal stats, got %+v", stats.Principals)
	}
	if stats.Groups.LastRefresh != nil || stats.Groups.ItemCount != 0 {
		t.Errorf("expected zeroed group stats, got %+v", stats.Groups)
	}
}

func TestValid(t *testing.T) {
	c := tempCache(t, time.Hour)

	if c.Valid(BucketPrincipals) {
		t.Error("expected invalid before first refresh")
	}

	base := time.Now()
	c.now = func() time.Time { return base }
	c.SetPrincipals(testPrincipals())

	if !c.Valid(BucketPrincipals) {
		t.Error("expected valid right after refresh")
	}

	c.now = func() time.Time { return base.Add(2 * time.Hour) }
	if c.Valid(BucketPrincipals) {
		t.Error("expected invalid after TTL elapsed")
	}
}

func TestSchemaMismatch_TriggersReset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "directory-cache.db")

	c, err := OpenAt(path, time.Hour, zerolog.Nop())
	if err != nil {
		t.Fatalf("OpenAt failed: %v", err)
	}
	c.SetPrincipals(testPrincipals())

	// Simulate a store written by a different build.
	if _, err := c.db.Exec(`UPDATE schema_info SET version = ?`, SchemaVersion+1); err != nil {
		t.Fatalf("forcing version failed: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	c, err = OpenAt(path, time.Hour, zerolog.Nop())
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	if _, ok := c.Principals(); ok {
		t.Error("expected empty store after schema reset")
	}

	var version int
	if err := c.db.QueryRow(`SELECT version FROM schema_info WHERE id = 1`).Scan(&version); err != nil {
		t.Fatalf("reading version failed: %v", err)
	}
	if version != SchemaVersion {
		t.Errorf("expected persisted version %d, got %d", SchemaVersion, version)
	}
}

func TestDecodeMemberships_MalformedDegradesToEmpty(t *testing.T) {
	c := tempCache(t, time.Hour)

	c.SetPrincipals([]directory.Principal{
		{Username: "asmith", Enabled: true, Memberships: []directory.Membership{}},
	})

	// Corrupt the stored membership list behind the cache's back.
	if _, err := c.db.Exec(`UPDATE cached_principals SET memberships = '{not json'`); err != nil {
		t.Fatalf("corrupting row failed: %v", err)
	}

	got, ok := c.Principals()
	if !ok {
		t.Fatal("expected hit despite malformed memberships")
	}
	if got[0].Memberships == nil || len(got[0].Memberships) != 0 {
		t.Errorf("expected empty membership list, got %#v", got[0].Memberships)
	}
}

func TestGetStats(t *testing.T) {
	c := tempCache(t, time.Hour)

	base := time.Now()
	c.now = func() time.Time { return base }
	c.SetPrincipals(testPrincipals())

	stats := c.GetStats()
	if stats.Principals.ItemCount != 3 {
		t.Errorf("expected 3 principals, got %d", stats.Principals.ItemCount)
	}
	if stats.Principals.LastRefresh == nil {
		t.Fatal("expected a refresh timestamp")
	}
	if !stats.Principals.LastRefresh.Equal(base) {
		t.Errorf("refresh timestamp mismatch: want %v, got %v", base.UTC(), stats.Principals.LastRefresh)
	}
	if stats.Groups.LastRefresh != nil {
		t.Error("groups never refreshed, expected nil timestamp")
	}
}
