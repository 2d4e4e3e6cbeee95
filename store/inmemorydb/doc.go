/*
Package inmemorydb provides an implementation of github.com/omega-numworks/omegabot/store's StringStorer interface
as an in-memory data store relying on a wrapping StringStorer for actual persistence.

Plugins may query their StringStorer on every message to evaluate for a match. The inmemorydb serves those reads
from memory and only writes through to the persistent storer.

Example code:

	import (
		"github.com/omega-numworks/omegabot/store"
		"github.com/omega-numworks/omegabot/store/inmemorydb"
	)

	func main() {
		// Create your persistent storer first
		persistentStorer, err := store.NewLevelDB(plugins.ModerationPluginName, storagePath)
		if err != nil {
			log.Fatalf("Opening [%s] db failed: %s", plugins.ModerationPluginName, err.Error())
		}

		// Create the inmemorydb
		formatStorer, err := inmemorydb.New(persistentStorer)
		if err != nil {
			log.Fatalf("Opening creating in-memory db wrapper: %s", err.Error())
		}
		defer formatStorer.Close()

		...
	}
*/
package inmemorydb
