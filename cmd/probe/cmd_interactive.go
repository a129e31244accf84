package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
)

// runInteractive runs the numbered menu until the user quits or input ends.
// The session lives for the whole loop and is persisted after every build.
// Each build gets its own --timeout and signal scope, so an interrupted build
// returns to the menu and the menu itself has no deadline.
func runInteractive(in io.Reader) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Println("--- Interactive Encrypt/Decrypt & Matrix Program ---")

	reader := bufio.NewReader(in)
	prompt := func(label string) (string, bool) {
		fmt.Print(label)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return "", false
		}
		return strings.TrimSpace(line), true
	}

	for {
		printMenu(a)

		choice, ok := prompt("Enter your choice (1-7): ")
		if !ok {
			fmt.Println()
			return nil
		}

		switch choice {
		case "1":
			identity, ok := prompt("Enter the API ID to use: ")
			if !ok {
				return nil
			}
			if err := a.requireOracle(); err != nil {
				fmt.Println(err)
				continue
			}
			ctx, cancel := commandContext()
			err := mapIdentity(ctx, a, identity)
			cancel()
			if err != nil {
				logger.Debug("Menu map build failed", zap.Error(err))
			}

		case "2":
			if err := a.requireOracle(); err != nil {
				fmt.Println(err)
				continue
			}
			ctx, cancel := commandContext()
			err := buildMatrix(ctx, a)
			cancel()
			if err == nil {
				fmt.Println("Matrix data generated successfully. Use option 5 to view.")
			}

		case "3":
			if a.session.Identity() == "" {
				fmt.Println("\nPlease set an API ID first (Option 1).")
				continue
			}
			ciphertext, ok := prompt("Enter the encrypted string to decrypt: ")
			if !ok {
				return nil
			}
			if err := decodeTo(os.Stdout, a, ciphertext); err != nil {
				logger.Debug("Menu decode failed", zap.Error(err))
			}

		case "4":
			if err := showMap(a); err != nil {
				fmt.Println(err)
			}

		case "5":
			if err := showMatrix(a, false); err != nil {
				fmt.Println(err)
			}

		case "6":
			if err := showStatus(a); err != nil {
				fmt.Println(err)
			}

		case "7", "q", "quit", "exit":
			fmt.Println("Exiting program.")
			return nil

		default:
			fmt.Println("Invalid choice. Please enter a number between 1 and 7.")
		}
	}
}

func printMenu(a *app) {
	fmt.Println("\n=========== Main Menu ===========")
	if id := a.session.Identity(); id != "" {
		fmt.Printf("Current API ID: %s\n", id)
	} else {
		fmt.Println("Current API ID: Not Set")
	}
	if n := len(a.session.Forward()); n > 0 {
		fmt.Printf("Decryption Map: %d chars mapped\n", n)
	} else {
		fmt.Println("No decryption map")
	}
	if l := a.session.SegmentLength(); l > 0 {
		fmt.Printf("Segment Length: %d\n", l)
	} else {
		fmt.Println("Segment Length: Not determined")
	}
	if n := len(a.session.Matrix()); n > 0 {
		fmt.Printf("Matrix Data:    %d chars generated\n", n)
	} else {
		fmt.Println("No matrix data")
	}
	fmt.Println("---------------------------------")
	fmt.Println("1. Set/Change API ID & Generate Decryption Map")
	fmt.Println("2. Generate Character Matrix Data")
	fmt.Println("3. Decrypt a String")
	fmt.Println("4. View Current Decryption Map")
	fmt.Println("5. View Current Matrix Data")
	fmt.Println("6. Show Status")
	fmt.Println("7. Quit")
	fmt.Println("=================================")
}
