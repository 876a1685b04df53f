// Package core defines the shared domain contracts of the assistant:
// sessions and their append-only message history, the anchored context model
// (none / prospect / listing / deal), display-ready context panels, grounding
// bundles, the action catalog entry shape and planned/executed action values,
// plus the collaborator interfaces the orchestration layer depends on
// (session store, domain directory, search, timelines, personas, execution
// engine).
//
// Centralizing contracts here keeps higher level packages (coordinator,
// grounding, executor) free of dependencies on concrete implementations;
// only the wiring layer decides which implementation to instantiate.
package core
