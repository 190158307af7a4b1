package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"parlo/client/internal/api"
)

var (
	profileName string
	profileBio  string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or update your profile",
	Long: `Show your profile. With --name or --bio, update those fields
instead.`,
	RunE: runProfile,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show your posting stats",
	RunE:  runStats,
}

func runProfile(cmd *cobra.Command, args []string) error {
	if _, err := current.requireLogin(); err != nil {
		return err
	}

	if cmd.Flags().Changed("name") || cmd.Flags().Changed("bio") {
		// The update endpoint replaces both fields, so the one the user did
		// not pass must carry its current value or it gets blanked.
		existing, err := current.client.GetProfile(cmd.Context())
		if err != nil {
			return friendly(err)
		}
		name, bio := mergeProfileFields(existing, profileName, profileBio,
			cmd.Flags().Changed("name"), cmd.Flags().Changed("bio"))
		profile, err := current.client.UpdateProfile(cmd.Context(), name, bio)
		if err != nil {
			return friendly(err)
		}
		fmt.Println("Profile updated")
		printProfile(profile.Name, profile.Email, profile.Bio)
		return nil
	}

	profile, err := current.client.GetProfile(cmd.Context())
	if err != nil {
		return friendly(err)
	}
	printProfile(profile.Name, profile.Email, profile.Bio)
	if !profile.JoinedAt.IsZero() {
		fmt.Printf("joined: %s\n", profile.JoinedAt.Format("2006-01-02"))
	}
	return nil
}

// mergeProfileFields fills any field the user did not pass from the current
// profile.
func mergeProfileFields(existing api.Profile, name, bio string, nameSet, bioSet bool) (string, string) {
	if !nameSet {
		name = existing.Name
	}
	if !bioSet {
		bio = existing.Bio
	}
	return name, bio
}

func printProfile(name, email, bio string) {
	fmt.Printf("name:  %s\n", name)
	fmt.Printf("email: %s\n", email)
	if bio != "" {
		fmt.Printf("bio:   %s\n", bio)
	}
}

func runStats(cmd *cobra.Command, args []string) error {
	if _, err := current.requireLogin(); err != nil {
		return err
	}
	stats, err := current.client.MyStats(cmd.Context())
	if err != nil {
		return friendly(err)
	}
	fmt.Printf("prompts: %d\n", stats.TotalPosts)
	fmt.Printf("upvotes: %d\n", stats.TotalUpvotes)
	return nil
}

func init() {
	profileCmd.Flags().StringVar(&profileName, "name", "", "new display name")
	profileCmd.Flags().StringVar(&profileBio, "bio", "", "new bio")
	rootCmd.AddCommand(profileCmd, statsCmd)
}
