package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"parlo/client/internal/api"
	"parlo/client/internal/compose"
	"parlo/client/internal/feed"
)

var (
	feedPage   int
	feedSearch string
	feedSort   string
	feedMine   bool

	postTitle   string
	postContent string
)

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Browse the prompt feed",
	Long: `Show one page of community prompts.

Sorting is 'new' (most recent first, the default) or 'top' (most upvoted
first). --search filters the page by title or content; --mine keeps only
your own prompts.`,
	RunE: runFeed,
}

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Create, edit, delete or upvote a prompt",
}

var postCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Publish a new prompt",
	RunE:  runPostCreate,
}

var postEditCmd = &cobra.Command{
	Use:   "edit [id]",
	Short: "Edit one of your prompts",
	Args:  cobra.ExactArgs(1),
	RunE:  runPostEdit,
}

var postDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete one of your prompts",
	Args:  cobra.ExactArgs(1),
	RunE:  runPostDelete,
}

var postUpvoteCmd = &cobra.Command{
	Use:   "upvote [id]",
	Short: "Upvote a prompt",
	Args:  cobra.ExactArgs(1),
	RunE:  runPostUpvote,
}

func runFeed(cmd *cobra.Command, args []string) error {
	sortMode := feed.SortRecency
	switch feedSort {
	case "", "new":
	case "top":
		sortMode = feed.SortPopularity
	default:
		return fmt.Errorf("unknown sort %q (want new or top)", feedSort)
	}
	if feedMine {
		if _, err := current.requireLogin(); err != nil {
			return err
		}
	}

	controller := feed.NewController(current.client, current.resolver)
	controller.SetPageSize(current.cfg.PageSize)
	items, err := controller.Load(cmd.Context(), feed.Query{
		Page:     feedPage,
		Search:   feedSearch,
		Sort:     sortMode,
		MineOnly: feedMine,
	})
	if err != nil {
		return friendly(err)
	}

	if len(items) == 0 {
		fmt.Println("No prompts on this page.")
		return nil
	}
	for _, post := range items {
		printPost(post, controller.IsMine(post))
	}
	fmt.Printf("page %d of %d prompts total\n", controller.Query().Page, controller.Total())
	return nil
}

func printPost(post api.Post, mine bool) {
	marker := " "
	if mine {
		marker = "*"
	}
	author := post.Author.Name
	if author == "" {
		author = "Unknown"
	}
	fmt.Printf("%s %-24s  ▲%-4d %s  by %s\n", marker, post.ID, post.Upvotes, post.Title, author)
}

func runPostCreate(cmd *cobra.Command, args []string) error {
	if _, err := current.requireLogin(); err != nil {
		return err
	}
	form := compose.NewForm(current.client)
	form.OpenBlank()
	return submitForm(cmd, form)
}

func runPostEdit(cmd *cobra.Command, args []string) error {
	if _, err := current.requireLogin(); err != nil {
		return err
	}
	existing, _, err := locatePrompt(cmd.Context(), current.client, args[0], current.cfg.PageSize)
	if err != nil {
		return friendly(err)
	}
	form := compose.NewForm(current.client)
	form.OpenEdit(existing)
	return submitForm(cmd, form)
}

// submitForm feeds the flag values into the form and submits, falling back to
// the pre-filled values when a flag was not passed (edit keeps old fields).
func submitForm(cmd *cobra.Command, form *compose.Form) error {
	if cmd.Flags().Changed("title") {
		form.SetTitle(postTitle)
	}
	if cmd.Flags().Changed("content") {
		form.SetContent(postContent)
	}
	if err := form.Submit(cmd.Context()); err != nil {
		return friendly(err)
	}
	result := form.Result()
	fmt.Printf("Saved prompt %s: %s\n", result.ID, result.Title)
	return nil
}

type promptLister interface {
	ListPrompts(ctx context.Context, page, limit int) (api.PromptPage, error)
}

// locatePrompt scans the first pages for a prompt id, returning the post and
// the page it sits on. Edit uses it to pre-fill the existing fields, upvote
// to load the page the optimistic increment applies to.
func locatePrompt(ctx context.Context, lister promptLister, id string, limit int) (api.Post, int, error) {
	if limit <= 0 {
		limit = feed.DefaultPageSize
	}
	for page := 1; page <= 10; page++ {
		result, err := lister.ListPrompts(ctx, page, limit)
		if err != nil {
			return api.Post{}, 0, err
		}
		for _, post := range result.Items {
			if post.ID == id {
				return post, page, nil
			}
		}
		if page*limit >= result.Total {
			break
		}
	}
	return api.Post{}, 0, fmt.Errorf("prompt %s not found", id)
}

func runPostDelete(cmd *cobra.Command, args []string) error {
	if _, err := current.requireLogin(); err != nil {
		return err
	}
	controller := feed.NewController(current.client, current.resolver)
	if err := controller.Remove(cmd.Context(), args[0]); err != nil {
		return friendly(err)
	}
	fmt.Printf("Deleted prompt %s\n", args[0])
	return nil
}

func runPostUpvote(cmd *cobra.Command, args []string) error {
	if _, err := current.requireLogin(); err != nil {
		return err
	}
	_, page, err := locatePrompt(cmd.Context(), current.client, args[0], current.cfg.PageSize)
	if err != nil {
		return friendly(err)
	}

	controller := feed.NewController(current.client, current.resolver)
	controller.SetPageSize(current.cfg.PageSize)
	if _, err := controller.Load(cmd.Context(), feed.Query{Page: page}); err != nil {
		return friendly(err)
	}
	if err := controller.Upvote(cmd.Context(), args[0]); err != nil {
		return friendly(err)
	}
	for _, post := range controller.Items() {
		if post.ID == args[0] {
			fmt.Printf("Upvoted %s (now ▲%d)\n", post.ID, post.Upvotes)
			return nil
		}
	}
	fmt.Printf("Upvoted %s\n", args[0])
	return nil
}

func init() {
	feedCmd.Flags().IntVar(&feedPage, "page", 1, "page number")
	feedCmd.Flags().StringVar(&feedSearch, "search", "", "filter by title or content")
	feedCmd.Flags().StringVar(&feedSort, "sort", "new", "sort order: new or top")
	feedCmd.Flags().BoolVar(&feedMine, "mine", false, "only my prompts")

	postCreateCmd.Flags().StringVar(&postTitle, "title", "", "prompt title")
	postCreateCmd.Flags().StringVar(&postContent, "content", "", "prompt body")
	postEditCmd.Flags().StringVar(&postTitle, "title", "", "new title")
	postEditCmd.Flags().StringVar(&postContent, "content", "", "new body")

	postCmd.AddCommand(postCreateCmd, postEditCmd, postDeleteCmd, postUpvoteCmd)
	rootCmd.AddCommand(feedCmd, postCmd)
}
