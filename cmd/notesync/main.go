// Command notesync is the command-line client: it keeps notes and tasks in
// a local store and synchronizes them with a notesync backend.
package main

func main() {
	Execute()
}
