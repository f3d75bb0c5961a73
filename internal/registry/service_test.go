package registry

import (
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modvault/internal/cache"
	"modvault/internal/manifest"
	"modvault/internal/models"
	"modvault/internal/store"
	"modvault/internal/webhooks"
)

type capturingDispatcher struct {
	urls     []string
	payloads []*webhooks.Payload
}

func (d *capturingDispatcher) Dispatch(url string, p *webhooks.Payload) {
	d.urls = append(d.urls, url)
	d.payloads = append(d.payloads, p)
}

func newTestService(t *testing.T) (*Service, *capturingDispatcher) {
	t.Helper()
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.DB.Close() })

	c, err := cache.New(64)
	require.NoError(t, err)

	log := logrus.New()
	log.SetOutput(io.Discard)

	d := &capturingDispatcher{}
	svc := New(st, c, d, log, Site{Protocol: "http://", ServerName: "mods.example.test"})
	return svc, d
}

func createUser(t *testing.T, st *store.Store, username string, role models.Role) *models.User {
	t.Helper()
	u := models.User{Username: username, Email: username + "@example.com", Role: role}
	id, err := st.CreateUser(&u, "hash")
	require.NoError(t, err)
	u.ID = id
	return &u
}

func manifestJSON(t *testing.T, name, versionNumber string, mutate func(map[string]interface{})) []byte {
	t.Helper()
	m := map[string]interface{}{
		"Name":         name,
		"Url":          "https://example.com/" + name,
		"Version":      versionNumber,
		"Description":  "description of " + name,
		"Targets":      map[string]interface{}{},
		"ContentTypes": 1,
	}
	if mutate != nil {
		mutate(m)
	}
	b, err := json.Marshal(m)
	require.NoError(t, err)
	return b
}

func publish(t *testing.T, svc *Service, userID int64, name, versionNumber string) *PublishResult {
	t.Helper()
	res, err := svc.PublishVersion(PublishInput{
		UserID:   userID,
		Manifest: manifestJSON(t, name, versionNumber, nil),
		File:     "/media/" + name + "-" + versionNumber + ".zip",
		Icon:     "/media/" + name + ".png",
	})
	require.NoError(t, err)
	return res
}

func TestPublishCreatesPackageAndVersion(t *testing.T) {
	svc, _ := newTestService(t)
	alice := createUser(t, svc.Store(), "Alice", models.RoleMaintainer)

	res := publish(t, svc, alice.ID, "CoolMod", "1.0.0")
	assert.Equal(t, "CoolMod", res.Package.Name)
	assert.Equal(t, "coolmod", res.Package.Slug)
	assert.Equal(t, "Alice", res.Package.OwnerName)
	assert.Equal(t, "1.0.0", res.Version.VersionNumber)
	assert.NotZero(t, res.Version.UUID4)

	detail, err := svc.GetPackageDetail("alice", "coolmod")
	require.NoError(t, err)
	assert.Equal(t, "Alice-CoolMod", detail.Summary.FullPackageName)
	assert.Equal(t, "1.0.0", detail.Summary.VersionNumber)
	assert.Equal(t, "http://mods.example.test/packages/alice/coolmod/versions/1.0.0/download", detail.DownloadURL)
	assert.Equal(t, "ror2mm://v1/install/mods.example.test/Alice/CoolMod/1.0.0/", detail.InstallURL)
	assert.Equal(t, "0 other mods depend on this mod", detail.DependantsString)
}

func TestLatestIsHighestActiveVersion(t *testing.T) {
	svc, _ := newTestService(t)
	alice := createUser(t, svc.Store(), "alice", models.RoleMaintainer)

	res := publish(t, svc, alice.ID, "Mod", "1.2.0")
	publish(t, svc, alice.ID, "Mod", "1.10.0")
	v190 := publish(t, svc, alice.ID, "Mod", "1.9.0")

	latest, err := svc.Latest(res.Package.ID)
	require.NoError(t, err)
	// numeric ordering: 1.10.0 beats 1.9.0
	assert.Equal(t, "1.10.0", latest.VersionNumber)

	detail, err := svc.GetPackageDetail("alice", "mod")
	require.NoError(t, err)
	assert.Equal(t, "1.10.0", detail.Summary.VersionNumber)

	// deactivating the highest falls back to the next highest
	ver, err := svc.Store().GetVersion(res.Package.ID, "1.10.0")
	require.NoError(t, err)
	require.NoError(t, svc.Store().SetVersionActive(ver.ID, false))

	latest, err = svc.Latest(res.Package.ID)
	require.NoError(t, err)
	assert.Equal(t, v190.Version.VersionNumber, latest.VersionNumber)
}

func TestPackageWithoutActiveVersionsIsHidden(t *testing.T) {
	svc, _ := newTestService(t)
	alice := createUser(t, svc.Store(), "alice", models.RoleMaintainer)
	res := publish(t, svc, alice.ID, "Ghost", "1.0.0")

	visible, err := svc.IsEffectivelyVisible(res.Package.ID)
	require.NoError(t, err)
	assert.True(t, visible)

	require.NoError(t, svc.Store().SetVersionActive(res.Version.ID, false))

	visible, err = svc.IsEffectivelyVisible(res.Package.ID)
	require.NoError(t, err)
	assert.False(t, visible)

	_, err = svc.GetPackageDetail("alice", "ghost")
	assert.ErrorIs(t, err, ErrHidden)

	summaries, err := svc.ListPackages(ScopeAll(), "", OrderLastUpdated)
	require.NoError(t, err)
	assert.Empty(t, summaries)
}

func TestDateUpdatedBumpsOnlyForNewHighest(t *testing.T) {
	svc, _ := newTestService(t)
	alice := createUser(t, svc.Store(), "alice", models.RoleMaintainer)

	res := publish(t, svc, alice.ID, "Mod", "2.0.0")
	first, err := svc.Store().GetPackageByID(res.Package.ID)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	publish(t, svc, alice.ID, "Mod", "1.0.0")
	afterLower, err := svc.Store().GetPackageByID(res.Package.ID)
	require.NoError(t, err)
	assert.True(t, afterLower.DateUpdated.Equal(first.DateUpdated), "backfilled version must not bump date_updated")

	time.Sleep(10 * time.Millisecond)
	publish(t, svc, alice.ID, "Mod", "3.0.0")
	afterHigher, err := svc.Store().GetPackageByID(res.Package.ID)
	require.NoError(t, err)
	assert.True(t, afterHigher.DateUpdated.After(first.DateUpdated), "new highest version must bump date_updated")
}

func TestDuplicateVersionRejected(t *testing.T) {
	svc, _ := newTestService(t)
	alice := createUser(t, svc.Store(), "alice", models.RoleMaintainer)
	publish(t, svc, alice.ID, "Mod", "1.0.0")

	_, err := svc.PublishVersion(PublishInput{
		UserID:   alice.ID,
		Manifest: manifestJSON(t, "Mod", "1.0.0", nil),
		File:     "/media/mod.zip",
	})
	var verr *manifest.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Version", verr.Field)
}

func TestInvalidManifestRejected(t *testing.T) {
	svc, _ := newTestService(t)
	alice := createUser(t, svc.Store(), "alice", models.RoleMaintainer)

	_, err := svc.PublishVersion(PublishInput{
		UserID:   alice.ID,
		Manifest: manifestJSON(t, "Mod", "1.0", nil),
		File:     "/media/mod.zip",
	})
	var verr *manifest.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Version", verr.Field)
}

func TestDependencyResolution(t *testing.T) {
	svc, _ := newTestService(t)
	alice := createUser(t, svc.Store(), "alice", models.RoleMaintainer)
	bob := createUser(t, svc.Store(), "bob", models.RoleMaintainer)

	libV1 := publish(t, svc, alice.ID, "Lib", "1.0.0")
	publish(t, svc, alice.ID, "Lib", "2.0.0")

	// unbounded picks the highest active version
	res, err := svc.PublishVersion(PublishInput{
		UserID: bob.ID,
		Manifest: manifestJSON(t, "App", "1.0.0", func(m map[string]interface{}) {
			m["Dependencies"] = map[string]interface{}{"lib": map[string]interface{}{}}
		}),
		File: "/media/app.zip",
	})
	require.NoError(t, err)
	deps, err := svc.SortedDependencies(res.Version.ID)
	require.NoError(t, err)
	require.Len(t, deps, 1)
	assert.Equal(t, "2.0.0", deps[0].VersionNumber)
	assert.Equal(t, "alice-Lib-2.0.0", deps[0].FullVersionName)

	// a max bound pins the resolution below it
	res, err = svc.PublishVersion(PublishInput{
		UserID: bob.ID,
		Manifest: manifestJSON(t, "App", "1.1.0", func(m map[string]interface{}) {
			m["Dependencies"] = map[string]interface{}{"lib": map[string]interface{}{"MaxVersion": "1.0.0"}}
		}),
		File: "/media/app.zip",
	})
	require.NoError(t, err)
	deps, err = svc.SortedDependencies(res.Version.ID)
	require.NoError(t, err)
	require.Len(t, deps, 1)
	assert.Equal(t, libV1.Version.VersionNumber, deps[0].VersionNumber)

	// unknown dependency slug is a validation error
	_, err = svc.PublishVersion(PublishInput{
		UserID: bob.ID,
		Manifest: manifestJSON(t, "App", "1.2.0", func(m map[string]interface{}) {
			m["Dependencies"] = map[string]interface{}{"nope": map[string]interface{}{}}
		}),
		File: "/media/app.zip",
	})
	var verr *manifest.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Dependencies", verr.Field)

	// a package cannot depend on itself
	_, err = svc.PublishVersion(PublishInput{
		UserID: bob.ID,
		Manifest: manifestJSON(t, "App", "1.3.0", func(m map[string]interface{}) {
			m["Dependencies"] = map[string]interface{}{"app": map[string]interface{}{}}
		}),
		File: "/media/app.zip",
	})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Dependencies", verr.Field)
}

func TestDependants(t *testing.T) {
	svc, _ := newTestService(t)
	alice := createUser(t, svc.Store(), "alice", models.RoleMaintainer)
	bob := createUser(t, svc.Store(), "bob", models.RoleMaintainer)

	lib := publish(t, svc, alice.ID, "Lib", "1.0.0")
	_, err := svc.PublishVersion(PublishInput{
		UserID: bob.ID,
		Manifest: manifestJSON(t, "App", "1.0.0", func(m map[string]interface{}) {
			m["Dependencies"] = map[string]interface{}{"lib": map[string]interface{}{}}
		}),
		File: "/media/app.zip",
	})
	require.NoError(t, err)

	dependants, err := svc.Dependants(lib.Package.ID)
	require.NoError(t, err)
	require.Len(t, dependants, 1)
	assert.Equal(t, "App", dependants[0].Name)

	detail, err := svc.GetPackageDetail("alice", "lib")
	require.NoError(t, err)
	assert.Equal(t, 1, detail.DependantCount)
	assert.Equal(t, "1 other mod depends on this mod", detail.DependantsString)
}

func TestTargetResolution(t *testing.T) {
	svc, _ := newTestService(t)
	st := svc.Store()
	alice := createUser(t, svc.Store(), "alice", models.RoleMaintainer)
	admin := createUser(t, svc.Store(), "root", models.RoleAdmin)

	target := models.Target{Name: "GameCore", Slug: "gamecore"}
	require.NoError(t, svc.CreateTarget(admin.ID, &target))
	require.NotZero(t, target.ID, "created target must carry its row id")
	_, err := svc.CreateTargetVersion(admin.ID, target.ID, "1.0.0")
	require.NoError(t, err)
	tv2, err := svc.CreateTargetVersion(admin.ID, target.ID, "2.0.0")
	require.NoError(t, err)

	res, err := svc.PublishVersion(PublishInput{
		UserID: alice.ID,
		Manifest: manifestJSON(t, "Mod", "1.0.0", func(m map[string]interface{}) {
			m["Targets"] = map[string]interface{}{"gamecore": map[string]interface{}{"MinVersion": "2.0.0"}}
		}),
		File: "/media/mod.zip",
	})
	require.NoError(t, err)

	compat, err := st.CompatibilitiesByVersion(res.Version.ID)
	require.NoError(t, err)
	require.Len(t, compat, 1)
	assert.Equal(t, target.ID, compat[0].TargetID)
	require.NotNil(t, compat[0].MinVersionID)
	assert.Equal(t, tv2.ID, *compat[0].MinVersionID)
	assert.Nil(t, compat[0].MaxVersionID)

	// unknown target slug is a validation error
	_, err = svc.PublishVersion(PublishInput{
		UserID: alice.ID,
		Manifest: manifestJSON(t, "Mod", "1.1.0", func(m map[string]interface{}) {
			m["Targets"] = map[string]interface{}{"unknown": map[string]interface{}{}}
		}),
		File: "/media/mod.zip",
	})
	var verr *manifest.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Targets", verr.Field)

	// a bound naming a nonexistent target version is a validation error
	_, err = svc.PublishVersion(PublishInput{
		UserID: alice.ID,
		Manifest: manifestJSON(t, "Mod", "1.2.0", func(m map[string]interface{}) {
			m["Targets"] = map[string]interface{}{"gamecore": map[string]interface{}{"MinVersion": "9.0.0"}}
		}),
		File: "/media/mod.zip",
	})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Targets", verr.Field)
}

func TestListingOrderingAndSearch(t *testing.T) {
	svc, _ := newTestService(t)
	alice := createUser(t, svc.Store(), "alice", models.RoleMaintainer)
	bob := createUser(t, svc.Store(), "bob", models.RoleMaintainer)
	admin := createUser(t, svc.Store(), "root", models.RoleAdmin)

	a := publish(t, svc, alice.ID, "Alpha", "1.0.0")
	time.Sleep(5 * time.Millisecond)
	publish(t, svc, bob.ID, "Beta", "1.0.0")
	time.Sleep(5 * time.Millisecond)
	g := publish(t, svc, bob.ID, "Gamma", "1.0.0")

	summaries, err := svc.ListPackages(ScopeAll(), "", OrderLastUpdated)
	require.NoError(t, err)
	require.Len(t, summaries, 3)
	assert.Equal(t, "Gamma", summaries[0].Name)
	assert.Equal(t, "Alpha", summaries[2].Name)

	// pinned sorts first regardless of key
	require.NoError(t, svc.SetPackagePinned(admin.ID, a.Package.ID, true))
	summaries, err = svc.ListPackages(ScopeAll(), "", OrderLastUpdated)
	require.NoError(t, err)
	assert.Equal(t, "Alpha", summaries[0].Name)

	// deprecated sorts last regardless of key
	require.NoError(t, svc.SetPackageDeprecated(bob.ID, g.Package.ID, true))
	summaries, err = svc.ListPackages(ScopeAll(), "", OrderLastUpdated)
	require.NoError(t, err)
	assert.Equal(t, "Gamma", summaries[2].Name)

	// search matches name and owner
	summaries, err = svc.ListPackages(ScopeAll(), "beta", OrderLastUpdated)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "Beta", summaries[0].Name)

	summaries, err = svc.ListPackages(ScopeAll(), "bob", OrderLastUpdated)
	require.NoError(t, err)
	assert.Len(t, summaries, 2)

	summaries, err = svc.ListPackages(ScopeAll(), "no such thing", OrderLastUpdated)
	require.NoError(t, err)
	assert.Empty(t, summaries)

	// owner scope only lists that identity's packages
	summaries, err = svc.ListPackages(ScopeOwner("alice"), "", OrderName)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "Alpha", summaries[0].Name)
}

func TestListingCacheInvalidatedByPublish(t *testing.T) {
	svc, _ := newTestService(t)
	alice := createUser(t, svc.Store(), "alice", models.RoleMaintainer)

	publish(t, svc, alice.ID, "First", "1.0.0")
	summaries, err := svc.ListPackages(ScopeAll(), "", OrderLastUpdated)
	require.NoError(t, err)
	require.Len(t, summaries, 1)

	// the publish busts the cached listing, so the new package shows up
	publish(t, svc, alice.ID, "Second", "1.0.0")
	summaries, err = svc.ListPackages(ScopeAll(), "", OrderLastUpdated)
	require.NoError(t, err)
	assert.Len(t, summaries, 2)
}

func TestPackageDetailCacheFollowsWrites(t *testing.T) {
	svc, _ := newTestService(t)
	alice := createUser(t, svc.Store(), "alice", models.RoleMaintainer)

	v1 := publish(t, svc, alice.ID, "Mod", "1.0.0")
	detail, err := svc.GetPackageDetail("alice", "mod")
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", detail.Summary.VersionNumber)

	// second read comes out of the cache
	again, err := svc.GetPackageDetail("alice", "mod")
	require.NoError(t, err)
	assert.Same(t, detail, again)

	// a publish busts the cached detail
	v2 := publish(t, svc, alice.ID, "Mod", "2.0.0")
	detail, err = svc.GetPackageDetail("alice", "mod")
	require.NoError(t, err)
	assert.Equal(t, "2.0.0", detail.Summary.VersionNumber)

	// so does a moderation write
	require.NoError(t, svc.DeactivatePackageVersion(alice.ID, v2.Version.ID))
	detail, err = svc.GetPackageDetail("alice", "mod")
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", detail.Summary.VersionNumber)

	require.NoError(t, svc.DeactivatePackageVersion(alice.ID, v1.Version.ID))
	_, err = svc.GetPackageDetail("alice", "mod")
	assert.ErrorIs(t, err, ErrHidden)
}

func TestGetOrCreateIdentityIdempotent(t *testing.T) {
	svc, _ := newTestService(t)
	st := svc.Store()
	alice := createUser(t, st, "Alice", models.RoleMaintainer)

	first, err := svc.GetOrCreateIdentityForUser(alice)
	require.NoError(t, err)
	assert.Equal(t, "Alice", first.Name)
	assert.Equal(t, "alice", first.Slug)

	second, err := svc.GetOrCreateIdentityForUser(alice)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	role, err := st.MemberRole(first.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, models.IdentityRoleOwner, role)
}

func TestPublishUnderSharedIdentity(t *testing.T) {
	svc, _ := newTestService(t)
	st := svc.Store()
	alice := createUser(t, st, "alice", models.RoleMaintainer)
	bob := createUser(t, st, "bob", models.RoleMaintainer)
	carol := createUser(t, st, "carol", models.RoleMaintainer)

	ident, err := svc.GetOrCreateIdentityForUser(alice)
	require.NoError(t, err)
	require.NoError(t, svc.AddIdentityMember(alice.ID, ident.ID, bob.ID, models.IdentityRoleMember))

	res, err := svc.PublishVersion(PublishInput{
		UserID:        bob.ID,
		OwnerIdentity: ident.Slug,
		Manifest:      manifestJSON(t, "TeamMod", "1.0.0", nil),
		File:          "/media/teammod.zip",
	})
	require.NoError(t, err)
	assert.Equal(t, ident.ID, res.Package.OwnerID)

	// non-members cannot publish under the identity
	_, err = svc.PublishVersion(PublishInput{
		UserID:        carol.ID,
		OwnerIdentity: ident.Slug,
		Manifest:      manifestJSON(t, "TeamMod", "1.1.0", nil),
		File:          "/media/teammod.zip",
	})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestLastOwnerCannotBeRemoved(t *testing.T) {
	svc, _ := newTestService(t)
	st := svc.Store()
	alice := createUser(t, st, "alice", models.RoleMaintainer)
	bob := createUser(t, st, "bob", models.RoleMaintainer)

	ident, err := svc.GetOrCreateIdentityForUser(alice)
	require.NoError(t, err)
	require.NoError(t, svc.AddIdentityMember(alice.ID, ident.ID, bob.ID, models.IdentityRoleMember))

	err = svc.RemoveIdentityMember(alice.ID, ident.ID, alice.ID)
	require.Error(t, err)

	// a plain member may leave
	require.NoError(t, svc.RemoveIdentityMember(bob.ID, ident.ID, bob.ID))

	// outsiders cannot remove anyone
	err = svc.RemoveIdentityMember(bob.ID, ident.ID, alice.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestDownloadCountingDeduplicatesByIP(t *testing.T) {
	svc, _ := newTestService(t)
	alice := createUser(t, svc.Store(), "alice", models.RoleMaintainer)
	res := publish(t, svc, alice.ID, "Mod", "1.0.0")

	require.NoError(t, svc.MaybeCountDownload(res.Version.ID, "10.0.0.1"))
	require.NoError(t, svc.MaybeCountDownload(res.Version.ID, "10.0.0.1"))
	require.NoError(t, svc.MaybeCountDownload(res.Version.ID, "10.0.0.2"))

	ver, err := svc.Store().GetVersionByID(res.Version.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), ver.Downloads)

	total, err := svc.TotalDownloads(res.Package.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

func TestDownloadCountedAgainAfterCooldown(t *testing.T) {
	svc, _ := newTestService(t)
	alice := createUser(t, svc.Store(), "alice", models.RoleMaintainer)
	res := publish(t, svc, alice.ID, "Mod", "1.0.0")

	svc.SetDownloadCooldown(time.Nanosecond)
	require.NoError(t, svc.MaybeCountDownload(res.Version.ID, "10.0.0.1"))
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, svc.MaybeCountDownload(res.Version.ID, "10.0.0.1"))

	ver, err := svc.Store().GetVersionByID(res.Version.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), ver.Downloads)
}

func TestUnparsableIPIsIgnored(t *testing.T) {
	svc, _ := newTestService(t)
	alice := createUser(t, svc.Store(), "alice", models.RoleMaintainer)
	res := publish(t, svc, alice.ID, "Mod", "1.0.0")

	require.NoError(t, svc.MaybeCountDownload(res.Version.ID, "not-an-ip"))

	ver, err := svc.Store().GetVersionByID(res.Version.ID)
	require.NoError(t, err)
	assert.Zero(t, ver.Downloads)
}

func TestReleaseWebhookDispatch(t *testing.T) {
	svc, d := newTestService(t)
	st := svc.Store()
	alice := createUser(t, st, "alice", models.RoleMaintainer)

	_, err := st.CreateWebhook(&models.Webhook{
		Name: "announcements", URL: "https://hooks.example.test/x", Type: models.WebhookTypeRelease, IsActive: true,
	})
	require.NoError(t, err)
	_, err = st.CreateWebhook(&models.Webhook{
		Name: "disabled", URL: "https://hooks.example.test/y", Type: models.WebhookTypeRelease, IsActive: false,
	})
	require.NoError(t, err)

	publish(t, svc, alice.ID, "Announced", "1.2.3")

	require.Len(t, d.urls, 1)
	assert.Equal(t, "https://hooks.example.test/x", d.urls[0])
	require.Len(t, d.payloads[0].Embeds, 1)
	embed := d.payloads[0].Embeds[0]
	assert.Equal(t, "Announced v1.2.3", embed.Title)
	assert.Equal(t, webhooks.ReleaseColor, embed.Color)
}

func TestModerationPermissions(t *testing.T) {
	svc, _ := newTestService(t)
	st := svc.Store()
	alice := createUser(t, st, "alice", models.RoleMaintainer)
	mallory := createUser(t, st, "mallory", models.RoleMaintainer)
	admin := createUser(t, st, "root", models.RoleAdmin)

	res := publish(t, svc, alice.ID, "Mod", "1.0.0")

	assert.ErrorIs(t, svc.SetPackageDeprecated(mallory.ID, res.Package.ID, true), ErrForbidden)
	require.NoError(t, svc.SetPackageDeprecated(alice.ID, res.Package.ID, true))

	assert.ErrorIs(t, svc.SetPackagePinned(alice.ID, res.Package.ID, true), ErrForbidden)
	require.NoError(t, svc.SetPackagePinned(admin.ID, res.Package.ID, true))

	assert.ErrorIs(t, svc.DeactivatePackageVersion(mallory.ID, res.Version.ID), ErrForbidden)
	require.NoError(t, svc.DeactivatePackageVersion(alice.ID, res.Version.ID))
}

func TestTargetListingAndLatest(t *testing.T) {
	svc, _ := newTestService(t)
	admin := createUser(t, svc.Store(), "root", models.RoleAdmin)
	user := createUser(t, svc.Store(), "alice", models.RoleMaintainer)

	target := models.Target{Name: "GameCore", Slug: "gamecore"}
	require.NoError(t, svc.CreateTarget(admin.ID, &target))
	require.NotZero(t, target.ID)
	stored, err := svc.Store().GetTargetBySlug("gamecore")
	require.NoError(t, err)
	assert.Equal(t, stored.ID, target.ID)
	assert.ErrorIs(t, svc.CreateTarget(user.ID, &models.Target{Name: "Nope", Slug: "nope"}), ErrForbidden)

	// no active versions yet: hidden from the listing
	targets, err := svc.ListTargets()
	require.NoError(t, err)
	assert.Empty(t, targets)

	_, err = svc.CreateTargetVersion(admin.ID, target.ID, "1.9.0")
	require.NoError(t, err)
	_, err = svc.CreateTargetVersion(admin.ID, target.ID, "1.10.0")
	require.NoError(t, err)

	targets, err = svc.ListTargets()
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Equal(t, "1.10.0", targets[0].VersionNumber)

	latest, err := svc.LatestTargetVersion(target.ID)
	require.NoError(t, err)
	assert.Equal(t, "1.10.0", latest.VersionNumber)

	// malformed numbers are rejected outright
	_, err = svc.CreateTargetVersion(admin.ID, target.ID, "1.10")
	require.Error(t, err)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "cool-mod", Slugify("Cool Mod"))
	assert.Equal(t, "alice", Slugify("Alice"))
	assert.Equal(t, "a-b-c", Slugify("A__B--C"))
}
