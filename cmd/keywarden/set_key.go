// Copyright (c) 2025 Keywarden Team
// Keywarden - API credential and preference manager
// This source code is licensed under the MIT license found in the LICENSE file.

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/keywarden/keywarden/internal/mask"
	"github.com/keywarden/keywarden/internal/replace"
	"github.com/keywarden/keywarden/internal/settings"
)

// setKeyCmd represents the 'set-key' command. Both the interactive and
// the scripted path drive the same replacement workflow; the flags only
// stand in for the prompts, they never skip a check.
var setKeyCmd = &cobra.Command{
	Use:   "set-key",
	Short: "Replace the stored API key through the confirmation gate",
	Long: `Replaces the stored API key. The new key is entered twice and the
replacement must be acknowledged before anything is written. A new key
within two edits of the current one is held back until the similarity
warning is overridden; mistyping a key during rotation usually looks
exactly like that.

Without flags the key is read interactively with hidden input. For
scripted use, --key-file supplies the key ('-' reads stdin) and the
--acknowledge and --allow-small-edit flags answer the prompts. The
same conditions apply either way.

Examples:
  # Interactive replacement
  keywarden set-key

  # Scripted replacement from a file
  keywarden set-key --key-file ./new-key.txt --acknowledge

  # Scripted replacement from stdin, overriding the similarity hold
  keywarden set-key --key-file - --acknowledge --allow-small-edit < key.txt`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if keyFile != "" {
			return runSetKeyScripted(keyFile, acknowledgeFlag, allowSmallEditFlag)
		}
		return runSetKeyInteractive()
	},
}

// runSetKeyScripted replaces the key without prompting. The supplied
// key serves as both entry and confirmation; the acknowledge and
// override conditions come from the flags.
func runSetKeyScripted(path string, acknowledged, overridden bool) error {
	key, err := readCandidateKey(path)
	if err != nil {
		return err
	}

	wf := replace.New(settings.CredentialStore{})
	if err := wf.Open(); err != nil {
		return fmt.Errorf("could not read the stored key: %w", err)
	}
	wf.SetCandidate(key)
	wf.SetConfirmation(key)
	wf.SetAcknowledged(acknowledged)
	wf.SetOverridden(overridden)

	if err := wf.Save(); err != nil {
		if errors.Is(err, replace.ErrBlocked) {
			return explainBlocked(wf.Report())
		}
		return err
	}

	fmt.Printf("API key replaced. The store now holds %s.\n", mask.Mask(key, 0))
	return nil
}

// explainBlocked names the condition that held the save back, in terms
// of the flag that clears it.
func explainBlocked(r replace.Report) error {
	if !r.Gate.KeysMatch {
		return errors.New("replacement blocked: the supplied key is empty")
	}
	if !r.Gate.Acknowledged {
		return errors.New("replacement blocked: pass --acknowledge to confirm the replacement")
	}
	if r.Gate.SmallEditDetected && !r.Gate.SmallEditOverridden {
		if r.Diverged {
			return fmt.Errorf("replacement blocked: the new key is only %d edit(s) away from the current one (first difference at position %d); pass --allow-small-edit to replace it anyway",
				r.Distance, r.Divergence.Index)
		}
		return fmt.Errorf("replacement blocked: the new key is only %d edit(s) away from the current one; pass --allow-small-edit to replace it anyway", r.Distance)
	}
	return replace.ErrBlocked
}

// runSetKeyInteractive walks the replacement ceremony on the terminal:
// hidden double entry, the similarity warning with its override, and a
// final confirmation.
func runSetKeyInteractive() error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return errors.New("stdin is not a terminal; use --key-file (or --key-file -) for scripted replacement")
	}

	wf := replace.New(settings.CredentialStore{})
	if err := wf.Open(); err != nil {
		return fmt.Errorf("could not read the stored key: %w", err)
	}
	if cur := wf.Current(); cur != "" {
		fmt.Printf("Current key: %s\n", mask.Mask(cur, 0))
	} else {
		fmt.Println("No key stored yet.")
	}

	candidate, err := readHiddenLine("New API key: ")
	if err != nil {
		return err
	}
	if candidate == "" {
		return errors.New("no key entered; nothing was changed")
	}
	confirmation, err := readHiddenLine("Repeat new API key: ")
	if err != nil {
		return err
	}

	wf.SetCandidate(candidate)
	wf.SetConfirmation(confirmation)

	report := wf.Report()
	if !report.Gate.KeysMatch {
		return errors.New("the two entries do not match; nothing was changed")
	}

	if report.Compared && report.Gate.SmallEditDetected {
		fmt.Printf("Warning: the new key is only %d edit(s) away from the current one.\n", report.Distance)
		if report.Diverged {
			d := report.Divergence
			fmt.Printf("First difference at position %d: %q vs %q\n", d.Index, d.LeftContext, d.RightContext)
		}
		if promptForConfirmation("Replace it anyway? Type 'yes' to override: ") != "yes" {
			fmt.Println("Aborted. The stored key is unchanged.")
			return nil
		}
		wf.SetOverridden(true)
	}

	if promptForConfirmation("This will replace the stored key. Continue? (yes/no): ") != "yes" {
		fmt.Println("Aborted. The stored key is unchanged.")
		return nil
	}
	wf.SetAcknowledged(true)

	if err := wf.Save(); err != nil {
		return err
	}
	fmt.Printf("API key replaced. The store now holds %s.\n", mask.Mask(candidate, 0))
	return nil
}

// readCandidateKey reads the replacement key from a file, or from stdin
// when the path is "-". Surrounding whitespace is stripped so a
// trailing newline never becomes part of the credential.
func readCandidateKey(path string) (string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("could not read the key: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// readHiddenLine reads a line from the terminal without echoing it.
func readHiddenLine(prompt string) (string, error) {
	fmt.Print(prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("could not read the key: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

// promptForConfirmation displays a prompt and reads a line from stdin.
func promptForConfirmation(prompt string) string {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	answer, _ := reader.ReadString('\n')
	return strings.TrimSpace(strings.ToLower(answer))
}
