// Package overlay implements the always-on-top system stats overlay.
//
// The overlay displays live CPU, memory, temperature, and top-process
// stats in two presentation modes: a small edge-docked arrow and a
// movable compact panel (HUD).
//
// # Architecture
//
// The package uses the Bubble Tea framework, which follows The Elm
// Architecture (Model-Update-View pattern):
//
//   - Model: Holds overlay state (view state, latest snapshot, alerts)
//   - Update: Processes messages (snapshots, pointer events, hotkey edges)
//   - View: Renders the current state to a string for display
//
// # Key Components
//
//	Machine  - The view state machine fusing pointer, hotkey, and
//	           configuration events into one state
//	Model    - The Bubble Tea model, the single consumer of all
//	           producer streams
//	History  - Ring buffer storage for the in-overlay sparklines
//	Frame    - The pure rendering input; view functions hold no logic
//
// # Message Flow
//
// Three producers feed the single-threaded Update loop:
//
//  1. The stats sampler emits snapshots on a bounded channel, polled
//     via a re-arming command
//  2. Pointer events arrive as tea.MouseMsg from the terminal
//  3. The hotkey listener emits down/up edges on its own channel
//
// A slow render never stalls sampling (the queue drops oldest), and a
// slow sensor read never stalls the UI. The position save on drag-end
// runs as an async command so disk I/O stays off the render path.
package overlay
