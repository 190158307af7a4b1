package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"parlo/client/internal/comments"
)

var commentsCmd = &cobra.Command{
	Use:   "comments [postID]",
	Short: "Show a prompt's comment thread",
	Args:  cobra.ExactArgs(1),
	RunE:  runComments,
}

var commentCmd = &cobra.Command{
	Use:   "comment",
	Short: "Add or delete a comment",
}

var commentAddCmd = &cobra.Command{
	Use:   "add [postID] [text]",
	Short: "Comment on a prompt",
	Args:  cobra.ExactArgs(2),
	RunE:  runCommentAdd,
}

var commentDeleteCmd = &cobra.Command{
	Use:   "delete [postID] [commentID]",
	Short: "Delete one of your comments",
	Args:  cobra.ExactArgs(2),
	RunE:  runCommentDelete,
}

func runComments(cmd *cobra.Command, args []string) error {
	thread := comments.NewThread(args[0], current.client, current.resolver)
	items, err := thread.Open(cmd.Context())
	if err != nil {
		return friendly(err)
	}
	defer thread.Close()

	if len(items) == 0 {
		fmt.Println("No comments yet.")
		return nil
	}
	for _, comment := range items {
		author := comment.Author.Name
		if author == "" {
			author = "Unknown"
		}
		marker := " "
		if thread.IsMine(comment) {
			marker = "*"
		}
		fmt.Printf("%s %-24s  %s: %s\n", marker, comment.ID, author, comment.Content)
	}
	return nil
}

func runCommentAdd(cmd *cobra.Command, args []string) error {
	if _, err := current.requireLogin(); err != nil {
		return err
	}
	thread := comments.NewThread(args[0], current.client, current.resolver)
	if _, err := thread.Open(cmd.Context()); err != nil {
		return friendly(err)
	}
	defer thread.Close()

	if err := thread.Submit(cmd.Context(), args[1]); err != nil {
		return friendly(err)
	}
	fmt.Printf("Comment added to %s\n", args[0])
	return nil
}

func runCommentDelete(cmd *cobra.Command, args []string) error {
	if _, err := current.requireLogin(); err != nil {
		return err
	}
	thread := comments.NewThread(args[0], current.client, current.resolver)
	if _, err := thread.Open(cmd.Context()); err != nil {
		return friendly(err)
	}
	defer thread.Close()

	if err := thread.Remove(cmd.Context(), args[1]); err != nil {
		return friendly(err)
	}
	fmt.Printf("Deleted comment %s\n", args[1])
	return nil
}

func init() {
	commentCmd.AddCommand(commentAddCmd, commentDeleteCmd)
	rootCmd.AddCommand(commentsCmd, commentCmd)
}
