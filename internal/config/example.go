package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# mazerun configuration file
# Values can be overridden by MAZERUN_* environment variables or CLI flags

# Maze size in cells (0 = fit the terminal)
rows = 0
cols = 0

# Fixed seed for reproducible mazes (omit for a random seed)
# seed = 42

# Number of agents and how they break ties between open passages
# (priority, rotating or random)
agents = 1
tie_break = "priority"

# Release one more agent every N frames (0 = all at once)
agent_stagger = 0

# Start and goal cells as [row, col] (default: top-left and bottom-right)
# start = [0, 0]
# goal = [9, 19]

# Animation
frame_delay_ms = 40
animate_generation = true
interactive = false
loop = false

# Look: solid, curved, double, bold, block or hedge walls;
# border_style draws the outer wall in another style ("" keeps wall_style);
# wall color is an ANSI color 0-7; agents are smiley, dot or letter
wall_style = "solid"
border_style = ""
wall_color = 7
agent_style = "smiley"

# Logging (interactive runs log to a file under log_dir)
log_dir = "~/.mazerun/logs"
log_level = "info"
log_format = "text"
log_timestamps = false
log_caller = false
`
}
