/*
The sync package implements one-way mirroring of a source directory tree onto
a replica directory tree.

Each pass runs three ordered phases rooted at "ensure the replica root
exists":

1) Directory sync -- every directory under the source gets a corresponding
   directory under the replica. This runs first so that destination
   directories exist before nested files are copied.
2) File sync -- every regular file under the source is copied to the replica
   if the replica side is missing or its content hash differs. Equality is
   judged by content hash alone, never by timestamps.
3) Deletion sync -- every replica entry with no corresponding source entry is
   removed. Doomed paths are collected during the walk and deleted only after
   the walk completes, so the tree is never mutated mid-iteration.

Entries are correlated across the two trees by their path relative to the
tree root. Entries that are neither regular files nor directories are skipped
by the copy phase but still deleted if orphaned.

A pass never caches state for the next one. Every pass re-walks both trees
from scratch, so a pass that was cut short by a filesystem error self-heals
on the next run.

The Driver repeats passes on a fixed interval until a shutdown is requested.
All shared state for one synchronization lives on a Session, so independent
sessions can run in the same process without interfering.
*/
package sync
