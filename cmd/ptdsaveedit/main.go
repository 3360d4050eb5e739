// Command ptdsaveedit is an interactive terminal tool for creating and
// editing PTD accounts directly against the same persist.Store and
// save.Account/save.Roster types the server uses, so anything it writes
// round-trips through the server's own codec.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jaykobdetar/Local-Pokemon-tower-defense-server/internal/data"
	"github.com/jaykobdetar/Local-Pokemon-tower-defense-server/internal/persist"
	"github.com/jaykobdetar/Local-Pokemon-tower-defense-server/internal/save"
)

func main() {
	dir := "data/accounts"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}
	store, err := persist.NewFileStore(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	species, err := data.LoadSpeciesTable("data/yaml/species.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}

	interactiveMenu(store, species)
}

func interactiveMenu(store persist.Store, species *data.SpeciesTable) {
	in := bufio.NewReader(os.Stdin)
	ctx := context.Background()

	fmt.Println(strings.Repeat("=", 50))
	fmt.Println("  PTD SAVE EDITOR")
	fmt.Println(strings.Repeat("=", 50))

	email := prompt(in, "\nEnter account email (or new name to create): ")
	if email == "" {
		fmt.Println("No email entered, exiting.")
		return
	}

	acct, rosters, found, err := store.LoadAccount(ctx, email)
	if err != nil {
		fmt.Printf("error loading account: %v\n", err)
		return
	}
	if found {
		fmt.Printf("\nLoaded account: %s\n", email)
	} else {
		fmt.Printf("\nCreating new account: %s\n", email)
		acct, err = persist.NewAccount()
		if err != nil {
			fmt.Printf("error: %v\n", err)
			return
		}
		acct.Password = email
		rosters = map[string]save.Roster{}
		for _, slot := range save.SlotKeys {
			rosters[slot] = save.Roster{}
		}
		for _, slot := range save.SlotKeys {
			if err := store.SaveAccount(ctx, email, acct, rosters[slot], slot); err != nil {
				fmt.Printf("error saving new account: %v\n", err)
				return
			}
		}
	}

	for {
		fmt.Println("\n" + strings.Repeat("-", 40))
		fmt.Println("MAIN MENU")
		fmt.Println(strings.Repeat("-", 40))
		fmt.Println("1. Edit Slot 1")
		fmt.Println("2. Edit Slot 2")
		fmt.Println("3. Edit Slot 3")
		fmt.Println("4. Quick Import - Full Team")
		fmt.Println("5. View All Slots Summary")
		fmt.Println("6. Save & Exit")
		fmt.Println("0. Exit without saving")

		switch choice := prompt(in, "\nChoice: "); choice {
		case "0":
			fmt.Println("Exiting without saving changes.")
			return
		case "6":
			for _, slot := range save.SlotKeys {
				if err := store.SaveAccount(ctx, email, acct, rosters[slot], slot); err != nil {
					fmt.Printf("error saving: %v\n", err)
					return
				}
			}
			fmt.Println("Account saved.")
			return
		case "5":
			printAllSlotsSummary(acct, rosters, species)
		case "4":
			quickImport(in, acct, rosters)
		case "1", "2", "3":
			editSlot(in, acct, rosters, choice, species)
		}
	}
}

// editSlot runs the per-slot submenu, grounded on edit_slot's menu in
// the original save editor.
func editSlot(in *bufio.Reader, acct *save.Account, rosters map[string]save.Roster, slot string, species *data.SpeciesTable) {
	roster := rosters[slot]
	s := acct.Slots[slot]

	for {
		fmt.Printf("\n=== SLOT %s ===\n", slot)
		fmt.Printf("Nickname: %s\n", s.Nickname)
		fmt.Printf("Badges: %d\n", s.Badges)
		fmt.Printf("Money: $%d\n", s.Money)
		fmt.Printf("Pokemon: %d\n", len(roster))
		printPokemonList(roster, species)

		fmt.Println("\n1. Set badges")
		fmt.Println("2. Set money")
		fmt.Println("3. Add Pokemon (species level [s for shiny])")
		fmt.Println("4. Remove Pokemon")
		fmt.Println("5. Clear all Pokemon")
		fmt.Println("6. Back to main menu")

		switch prompt(in, "\nChoice: ") {
		case "6":
			acct.Slots[slot] = s
			rosters[slot] = roster
			return
		case "1":
			if n, err := strconv.Atoi(prompt(in, "Enter badges (0-8): ")); err == nil {
				s.Badges = n
			} else {
				fmt.Println("Invalid number")
			}
		case "2":
			if n, err := strconv.Atoi(prompt(in, "Enter money: ")); err == nil {
				s.Money = n
			} else {
				fmt.Println("Invalid number")
			}
		case "3":
			fields := strings.Fields(prompt(in, "Enter: <species#> <level> [s]: "))
			if len(fields) < 2 {
				fmt.Println("Need at least species and level")
				continue
			}
			sp, err1 := strconv.Atoi(fields[0])
			lvl, err2 := strconv.Atoi(fields[1])
			if err1 != nil || err2 != nil {
				fmt.Println("Invalid input")
				continue
			}
			rarity := save.RarityNormal
			if len(fields) > 2 && strings.EqualFold(fields[2], "s") {
				rarity = save.RarityShiny
			}
			roster = append(roster, newPokemon(sp, lvl, rarity, nextMyID(roster)))
			fmt.Printf("Added %s Lv%d\n", species.Name(sp), lvl)
		case "4":
			if len(roster) == 0 {
				continue
			}
			fmt.Println("Pokemon to remove:")
			for i, p := range roster {
				fmt.Printf("  %d. %s Lv%d\n", i+1, species.Name(p.Species), p.Level)
			}
			idxStr := prompt(in, "Enter number to remove (or 'c' to cancel): ")
			if strings.EqualFold(idxStr, "c") {
				continue
			}
			idx, err := strconv.Atoi(idxStr)
			if err != nil || idx < 1 || idx > len(roster) {
				fmt.Println("Invalid selection")
				continue
			}
			roster = append(roster[:idx-1], roster[idx:]...)
			for i := range roster {
				roster[i].MyID = i + 1
			}
		case "5":
			if strings.EqualFold(prompt(in, "Clear all Pokemon? (y/n): "), "y") {
				roster = save.Roster{}
			}
		}
	}
}

func nextMyID(roster save.Roster) int {
	max := 0
	for _, p := range roster {
		if p.MyID > max {
			max = p.MyID
		}
	}
	return max + 1
}

func newPokemon(species, level, rarity, myID int) save.PokemonRecord {
	exp := 0
	if level > 1 {
		exp = level * level * level
	}
	return save.PokemonRecord{
		Species:      species,
		Experience:   exp,
		Level:        level,
		Move1:        1,
		MoveSelected: 1,
		TargetType:   1,
		MyID:         myID,
		Position:     myID,
		Rarity:       rarity,
	}
}

func printPokemonList(roster save.Roster, species *data.SpeciesTable) {
	if len(roster) == 0 {
		fmt.Println("  (empty)")
		return
	}
	for _, p := range roster {
		tag := ""
		switch p.Rarity {
		case save.RarityShiny:
			tag = " SHINY"
		case save.RarityShadow:
			tag = " SHADOW"
		}
		fmt.Printf("  [%3d] %-15s Lv%-3d%s\n", p.MyID, species.Name(p.Species), p.Level, tag)
	}
}

func printAllSlotsSummary(acct *save.Account, rosters map[string]save.Roster, species *data.SpeciesTable) {
	for _, slot := range save.SlotKeys {
		s := acct.Slots[slot]
		roster := rosters[slot]
		fmt.Printf("\n=== Slot %s ===\n", slot)
		fmt.Printf("Badges: %d, Money: $%d\n", s.Badges, s.Money)
		fmt.Printf("Pokemon (%d):\n", len(roster))
		printPokemonList(roster, species)
	}
}

var presetTeams = map[string][][3]int{
	"1": {{1, 5, 0}, {4, 5, 0}, {7, 5, 0}},                                                    // Starters
	"2": {{1, 5, 1}, {4, 5, 1}, {7, 5, 1}},                                                    // Shiny starters
	"3": {{133, 25, 0}, {134, 25, 0}, {135, 25, 0}, {136, 25, 0}},                             // Eeveelutions
	"4": {{144, 50, 0}, {145, 50, 0}, {146, 50, 0}},                                           // Legendary birds
	"5": {{144, 70, 0}, {145, 70, 0}, {146, 70, 0}, {150, 70, 0}, {151, 70, 0}},                // Full legendary
	"6": {{6, 100, 0}, {9, 100, 0}, {3, 100, 0}, {149, 100, 0}, {150, 100, 0}, {151, 100, 0}}, // Championship
}

func quickImport(in *bufio.Reader, acct *save.Account, rosters map[string]save.Roster) {
	fmt.Println("\nPreset Teams:")
	fmt.Println("1. Starters (all 3 at Lv5)")
	fmt.Println("2. Shiny Starters")
	fmt.Println("3. Full Eeveelutions")
	fmt.Println("4. Legendary Birds")
	fmt.Println("5. Full Legendary (Birds + Mewtwo + Mew)")
	fmt.Println("6. Championship Team (Lv100)")

	choice := prompt(in, "Choice: ")
	preset, ok := presetTeams[choice]
	if !ok {
		fmt.Println("Invalid choice")
		return
	}
	slot := prompt(in, "Slot (1/2/3): ")
	if slot != "1" && slot != "2" && slot != "3" {
		slot = "1"
	}

	roster := make(save.Roster, 0, len(preset))
	for i, entry := range preset {
		rarity := save.RarityNormal
		if entry[2] == 1 {
			rarity = save.RarityShiny
		}
		roster = append(roster, newPokemon(entry[0], entry[1], rarity, i+1))
	}
	rosters[slot] = roster
	fmt.Printf("Imported %d Pokemon into slot %s!\n", len(roster), slot)
}

func prompt(in *bufio.Reader, msg string) string {
	if msg != "" {
		fmt.Print(msg)
	}
	line, _ := in.ReadString('\n')
	return strings.TrimSpace(line)
}
