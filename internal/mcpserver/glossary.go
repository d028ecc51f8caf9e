package mcpserver

// Glossary explains the viewer's vocabulary to MCP clients.
const Glossary = `# Scenario Viewer Glossary

- **Scenario**: a labeled driving condition such as Rain, Tunnel or Highway.
  Identified by an id; names are unique.
- **Sequence**: a recorded drive of consecutive frames. Sequences without a
  frame count are treated as 1000 frames long for timelines and statistics.
- **Share**: the percentage (0-100) of a sequence's frames in which a
  scenario occurs.
- **Frame**: one image of a sequence, numbered from 1. Frame metadata holds a
  timestamp (HH:MM:SS at 30 fps), a presence flag for the selected scenario,
  a confidence score between 0.70 and 0.99 and a placeholder image URL.
- **Presence**: synthetic. A scenario counts as present in a frame unless
  (frame + length of the scenario name) is divisible by 3.
- **Timeline**: up to 100 evenly spaced frames of a sequence, starting at
  frame 1, each with a thumbnail.
- **Segments**: the sequence split into about 40 equal parts, each marked
  present or absent for a scenario.
- **Statistics**: estimated frames per scenario across the whole catalog,
  derived from the shares, sorted by share of all frames.

## Tools

- ` + "`list_scenarios`" + ` - scenarios, optionally filtered by name.
- ` + "`list_sequences`" + ` - sequences, optionally for one scenario.
- ` + "`get_frame`" + ` - metadata of a single frame.
- ` + "`get_timeline`" + ` - sampled timeline of a sequence for a scenario.
- ` + "`get_segments`" + ` - presence bar segments of a sequence for a scenario.
- ` + "`scenario_statistics`" + ` - catalog-wide scenario coverage.
`
