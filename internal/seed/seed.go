package seed

import (
	"fmt"
	"log"

	"devconnector/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
	// SkipBcrypt stores the demo password unhashed. Such accounts cannot log in.
	SkipBcrypt bool
	DryRun     bool
	// MaxDays bounds how far back post timestamps are spread.
	MaxDays  int
	RandSeed int64
}

// Result counts what a Seed run created.
type Result struct {
	Users    int
	Profiles int
	Posts    int
}

// Seed populates the database with developers, their profiles and posts.
func Seed(db *gorm.DB, opts Options) (*Result, error) {
	log.Printf("🌱 Starting database seeding with %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	if opts.ShouldClean && !opts.DryRun {
		if err := clearData(db); err != nil {
			return nil, fmt.Errorf("failed to clear existing data: %w", err)
		}
	}

	f := NewFactory(db, opts)
	res := &Result{}

	users := make([]models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := f.CreateUser()
		if err != nil {
			return nil, fmt.Errorf("failed to create users: %w", err)
		}
		users = append(users, *user)

		// Roughly four in five developers fill out a profile.
		if f.faker.Number(1, 5) == 1 {
			continue
		}
		if _, err := f.CreateProfile(user); err != nil {
			return nil, fmt.Errorf("failed to create profile for user %d: %w", user.ID, err)
		}
		res.Profiles++
	}
	res.Users = len(users)
	log.Printf("✓ %d users created, %d with profiles", res.Users, res.Profiles)

	if len(users) == 0 || opts.NumPosts <= 0 {
		log.Println("🎉 Database seeding completed successfully!")
		return res, nil
	}

	posts := make([]*models.Post, 0, opts.NumPosts)
	for i := 0; i < opts.NumPosts; i++ {
		author := users[f.faker.Number(0, len(users)-1)]
		posts = append(posts, f.BuildPost(&author, users))
	}
	if err := f.CreatePostsBatch(posts); err != nil {
		return nil, fmt.Errorf("failed to create posts: %w", err)
	}
	res.Posts = len(posts)
	log.Printf("✓ %d posts created", res.Posts)

	log.Println("🎉 Database seeding completed successfully!")
	return res, nil
}

func clearData(db *gorm.DB) error {
	log.Println("🗑️  Clearing existing data...")
	if db.Dialector.Name() == "postgres" {
		return db.Exec(`TRUNCATE TABLE posts, profiles, users RESTART IDENTITY CASCADE`).Error
	}
	return db.Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{&models.Post{}, &models.Profile{}, &models.User{}} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
