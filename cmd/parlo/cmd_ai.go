package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"parlo/client/internal/api"
)

var (
	translateLang string
	vocabLimit    int
	exerciseTopic string
	exerciseLevel string
	exerciseTypes []string
	exerciseCount int
)

var aiCmd = &cobra.Command{
	Use:   "ai",
	Short: "AI study helpers",
	Long: `AI-backed study tools: grammar correction, translation, vocabulary
suggestions and practice exercise generation.`,
}

var aiGrammarCmd = &cobra.Command{
	Use:   "grammar [text]",
	Short: "Correct the grammar of a sentence",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAIGrammar,
}

var aiTranslateCmd = &cobra.Command{
	Use:   "translate [text]",
	Short: "Translate text",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAITranslate,
}

var aiVocabCmd = &cobra.Command{
	Use:   "vocab [text]",
	Short: "Suggest vocabulary for a text",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAIVocab,
}

var aiExerciseCmd = &cobra.Command{
	Use:   "exercise",
	Short: "Generate practice exercises",
	RunE:  runAIExercise,
}

func runAIGrammar(cmd *cobra.Command, args []string) error {
	if _, err := current.requireLogin(); err != nil {
		return err
	}
	fix, err := current.client.FixGrammar(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return friendly(err)
	}
	fmt.Println(fix.Corrected)
	for _, explanation := range fix.Explanations {
		fmt.Printf("  - %s\n", explanation)
	}
	return nil
}

func runAITranslate(cmd *cobra.Command, args []string) error {
	if _, err := current.requireLogin(); err != nil {
		return err
	}
	result, err := current.client.Translate(cmd.Context(), strings.Join(args, " "), translateLang)
	if err != nil {
		return friendly(err)
	}
	fmt.Println(result.Translated)
	return nil
}

func runAIVocab(cmd *cobra.Command, args []string) error {
	if _, err := current.requireLogin(); err != nil {
		return err
	}
	suggestions, err := current.client.VocabAssist(cmd.Context(), strings.Join(args, " "), vocabLimit)
	if err != nil {
		return friendly(err)
	}
	for _, s := range suggestions {
		fmt.Printf("%s (%s): %s\n", s.Word, s.Difficulty, s.Meaning)
		if s.Example != "" {
			fmt.Printf("  e.g. %s\n", s.Example)
		}
	}
	return nil
}

func runAIExercise(cmd *cobra.Command, args []string) error {
	if _, err := current.requireLogin(); err != nil {
		return err
	}
	params := api.ExerciseParams{
		Topic: exerciseTopic,
		Level: exerciseLevel,
		Count: exerciseCount,
	}
	for _, raw := range exerciseTypes {
		switch t := api.ExerciseType(raw); t {
		case api.ExerciseVocabMCQ, api.ExerciseGrammarMCQ, api.ExerciseCloze, api.ExerciseReorder:
			params.Types = append(params.Types, t)
		default:
			return fmt.Errorf("unknown exercise type %q", raw)
		}
	}

	exercises, err := current.client.GenerateExercises(cmd.Context(), params)
	if err != nil {
		return friendly(err)
	}
	for i, ex := range exercises {
		fmt.Printf("%d. [%s] %s\n", i+1, ex.Type, ex.Question)
		for _, option := range ex.Options {
			fmt.Printf("     %s\n", option)
		}
		fmt.Printf("   answer: %s\n", ex.Answer)
	}
	return nil
}

func init() {
	aiTranslateCmd.Flags().StringVar(&translateLang, "to", "vi", "target language code")
	aiVocabCmd.Flags().IntVar(&vocabLimit, "limit", 6, "max suggestions")
	aiExerciseCmd.Flags().StringVar(&exerciseTopic, "topic", "", "exercise topic")
	aiExerciseCmd.Flags().StringVar(&exerciseLevel, "level", "", "CEFR level (A1..C1)")
	aiExerciseCmd.Flags().StringSliceVar(&exerciseTypes, "type", nil, "exercise types: vocab_mcq, grammar_mcq, cloze, reorder")
	aiExerciseCmd.Flags().IntVar(&exerciseCount, "count", 5, "number of exercises")

	aiCmd.AddCommand(aiGrammarCmd, aiTranslateCmd, aiVocabCmd, aiExerciseCmd)
	rootCmd.AddCommand(aiCmd)
}
