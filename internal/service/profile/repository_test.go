package profile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleProfile(slug string) *Profile {
	return &Profile{
		Slug:        slug,
		Name:        "Mario Rossi",
		Company:     "Rossi Immobiliare",
		Role:        "Agente",
		Bio:         "Twenty years in residential sales.",
		PhoneMobile: "+39 333 1234567",
		PhoneOffice: "+39 02 7654321",
		Emails:      []string{"mario@rossi.it", "info@rossi.it"},
		Websites:    []string{"rossi.it"},
		Addresses:   []string{"Via Roma 1, Milano", "Corso Italia 5, Torino"},
		Social:      SocialLinks{Instagram: "instagram.com/rossi", WhatsApp: "+393331234567"},
		PEC:         "rossi@pec.it",
		VATNumber:   "IT01234567890",
		SDICode:     "M5UXCR1",
		PhotoURL:    "/media/photos/mario-01J.jpg",
		Documents:   []string{"/media/documents/listino.pdf", "", "/media/documents/brochure.pdf"},
		Gallery:     []string{"/media/gallery/a.jpg", "/media/gallery/b.jpg"},
	}
}

// runRepositoryContract exercises the behaviour every Repository backend shares.
func runRepositoryContract(t *testing.T, newRepo func(t *testing.T) Repository) {
	t.Run("CreateAndGet", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Create(ctx, sampleProfile("  Mario-Rossi "))
		require.NoError(t, err)
		require.Equal(t, "mario-rossi", created.Slug)
		require.False(t, created.CreatedAt.IsZero())
		require.True(t, created.CreatedAt.Equal(created.UpdatedAt))

		got, err := repo.Get(ctx, "MARIO-ROSSI")
		require.NoError(t, err)

		want := sampleProfile("mario-rossi")
		require.Equal(t, want.Name, got.Name)
		require.Equal(t, want.Company, got.Company)
		require.Equal(t, want.Emails, got.Emails)
		require.Equal(t, want.Websites, got.Websites)
		require.Equal(t, want.Addresses, got.Addresses)
		require.Equal(t, want.Social, got.Social)
		require.Equal(t, want.VATNumber, got.VATNumber)
		require.Equal(t, want.PhotoURL, got.PhotoURL)
		require.Equal(t, want.Documents, got.Documents)
		require.Equal(t, want.Gallery, got.Gallery)
		require.True(t, created.CreatedAt.Equal(got.CreatedAt))
	})

	t.Run("CreateDuplicateIsCaseInsensitive", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Create(ctx, sampleProfile("anna"))
		require.NoError(t, err)

		dup := sampleProfile("ANNA")
		dup.Name = "Someone Else"
		_, err = repo.Create(ctx, dup)
		require.ErrorIs(t, err, ErrDuplicateSlug)

		got, err := repo.Get(ctx, "anna")
		require.NoError(t, err)
		require.Equal(t, "Mario Rossi", got.Name)
	})

	t.Run("CreateRejectsInvalidSlug", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Create(context.Background(), sampleProfile("not a slug"))
		require.ErrorIs(t, err, ErrInvalidSlug)
	})

	t.Run("CreateRejectsSeparatorInValue", func(t *testing.T) {
		repo := newRepo(t)
		p := sampleProfile("sep")
		p.Emails = []string{"a@x.com,b@y.com"}
		_, err := repo.Create(context.Background(), p)
		require.ErrorIs(t, err, ErrSeparatorInValue)
	})

	t.Run("GetNotFound", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Get(context.Background(), "nobody")
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("UpdateFields", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Create(ctx, sampleProfile("luca"))
		require.NoError(t, err)

		updated, err := repo.Update(ctx, "Luca", func(p *Profile) error {
			p.Name = "Luca Bianchi"
			p.Emails = []string{"luca@bianchi.it"}
			p.CreatedAt = created.CreatedAt.Add(-1)
			return nil
		})
		require.NoError(t, err)
		require.Equal(t, "Luca Bianchi", updated.Name)
		require.Equal(t, []string{"luca@bianchi.it"}, updated.Emails)
		require.True(t, updated.CreatedAt.Equal(created.CreatedAt), "created_at must not be caller controlled")
		require.False(t, updated.UpdatedAt.Before(created.UpdatedAt))

		got, err := repo.Get(ctx, "luca")
		require.NoError(t, err)
		require.Equal(t, "Luca Bianchi", got.Name)
		require.Equal(t, created.PhotoURL, got.PhotoURL)
	})

	t.Run("UpdateNotFound", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Update(context.Background(), "ghost", func(p *Profile) error { return nil })
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("UpdateMutatorErrorLeavesRecord", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		_, err := repo.Create(ctx, sampleProfile("keep"))
		require.NoError(t, err)

		boom := errors.New("boom")
		_, err = repo.Update(ctx, "keep", func(p *Profile) error {
			p.Name = "changed"
			return boom
		})
		require.ErrorIs(t, err, boom)

		got, err := repo.Get(ctx, "keep")
		require.NoError(t, err)
		require.Equal(t, "Mario Rossi", got.Name)
	})

	t.Run("Rename", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Create(ctx, sampleProfile("old-slug"))
		require.NoError(t, err)

		renamed, err := repo.Update(ctx, "old-slug", func(p *Profile) error {
			p.Slug = " New-Slug "
			return nil
		})
		require.NoError(t, err)
		require.Equal(t, "new-slug", renamed.Slug)

		_, err = repo.Get(ctx, "old-slug")
		require.ErrorIs(t, err, ErrNotFound)

		got, err := repo.Get(ctx, "new-slug")
		require.NoError(t, err)
		require.Equal(t, "Mario Rossi", got.Name)
		require.Equal(t, sampleProfile("x").Gallery, got.Gallery)
	})

	t.Run("RenameOntoExistingFails", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		a := sampleProfile("card-a")
		a.Name = "A"
		b := sampleProfile("card-b")
		b.Name = "B"
		_, err := repo.Create(ctx, a)
		require.NoError(t, err)
		_, err = repo.Create(ctx, b)
		require.NoError(t, err)

		_, err = repo.Update(ctx, "card-a", func(p *Profile) error {
			p.Slug = "CARD-B"
			p.Name = "A renamed"
			return nil
		})
		require.ErrorIs(t, err, ErrDuplicateSlug)

		gotA, err := repo.Get(ctx, "card-a")
		require.NoError(t, err)
		require.Equal(t, "A", gotA.Name)
		gotB, err := repo.Get(ctx, "card-b")
		require.NoError(t, err)
		require.Equal(t, "B", gotB.Name)
	})

	t.Run("DeleteIsIdempotent", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Create(ctx, sampleProfile("gone"))
		require.NoError(t, err)

		deleted, err := repo.Delete(ctx, "GONE")
		require.NoError(t, err)
		require.True(t, deleted)

		deleted, err = repo.Delete(ctx, "gone")
		require.NoError(t, err)
		require.False(t, deleted)

		deleted, err = repo.Delete(ctx, "never-existed")
		require.NoError(t, err)
		require.False(t, deleted)

		_, err = repo.Get(ctx, "gone")
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("List", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		for _, slug := range []string{"one", "two", "three"} {
			_, err := repo.Create(ctx, sampleProfile(slug))
			require.NoError(t, err)
		}

		all, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)

		seen := map[string]bool{}
		for _, p := range all {
			seen[p.Slug] = true
		}
		require.Equal(t, map[string]bool{"one": true, "two": true, "three": true}, seen)
	})

	t.Run("ConcurrentCreateSameSlug", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		const workers = 8
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			successes int
			conflicts int
		)
		for i := range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				p := sampleProfile(fmt.Sprintf("Race-%s", "Slug"))
				p.Name = fmt.Sprintf("worker %d", i)
				_, err := repo.Create(ctx, p)
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					successes++
				case errors.Is(err, ErrDuplicateSlug):
					conflicts++
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}()
		}
		wg.Wait()

		require.Equal(t, 1, successes)
		require.Equal(t, workers-1, conflicts)
	})

	t.Run("ConcurrentRenameSameTarget", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		const workers = 6
		for i := range workers {
			_, err := repo.Create(ctx, sampleProfile(fmt.Sprintf("src-%d", i)))
			require.NoError(t, err)
		}

		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			successes int
		)
		for i := range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := repo.Update(ctx, fmt.Sprintf("src-%d", i), func(p *Profile) error {
					p.Slug = "target"
					return nil
				})
				if err == nil {
					mu.Lock()
					successes++
					mu.Unlock()
					return
				}
				if !errors.Is(err, ErrDuplicateSlug) {
					t.Errorf("unexpected error: %v", err)
				}
			}()
		}
		wg.Wait()

		require.Equal(t, 1, successes)
		all, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, workers)
	})
}
