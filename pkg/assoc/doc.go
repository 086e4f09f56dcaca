// Package assoc associates file extensions with a program in the per-user
// classes tree, and undoes it.
//
// For program "Plotter" and extension "plt", Associate registers
//
//	Classes\Plotter_PLT_File                         @ = Plotter_PLT_File
//	Classes\Plotter_PLT_File\shell\open\command      @ = <exe> "%1"
//	Classes\Plotter_PLT_File\DefaultIcon             @ = <dir>\Icon_plt.ico   (when present)
//	Classes\.plt                                     @ = Plotter_PLT_File
//
// and, if .plt already belonged to another program, keeps the previous owner in
//
//	Classes\.plt\Backup_by_Plotter                   @ = <previous owner>
//
// Unassociate removes the ProgID keys bottom-up, deleting a key only when it
// has no subkeys, and restores the previous owner from the backup slot.
//
// Per extension the states are Unassociated, AssociatedByOther,
// AssociatedByApp and AssociatedByAppWithBackup; Associate is the only way
// into an App state and Unassociate the only way out.
package assoc
