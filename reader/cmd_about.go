package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

const aboutWidth = 72

var aboutSections = []struct {
	title string
	body  []string
}{
	{"About Me", []string{
		"Hi, I'm Minhaz, a Full Stack Developer working mostly with the MERN stack. " +
			"I build web applications with React, Node.js and a range of cloud platforms, " +
			"on both the frontend and the backend.",
	}},
	{"Vision for AISurfer Blog", []string{
		"AISurfer Blog is where I share what I learn about Artificial Intelligence, " +
			"Machine Learning and modern web development, for beginners and experienced developers alike.",
		"- In-depth tutorials and guides on AI and ML",
		"- Practical applications of AI in web development",
		"- Emerging trends in technology",
		"- A community of tech enthusiasts and developers",
	}},
	{"Connect With Me", []string{
		"Portfolio: https://minnhazportfolio.netlify.app/",
		"GitHub: https://github.com/minhaulmahmud",
		"LinkedIn: https://www.linkedin.com/in/minhazulmahmud/",
	}},
}

var aboutCmd = &cobra.Command{
	Use:   "about",
	Short: "About the blog and its author",
	Args:  cobra.NoArgs,
	// static text, no connection needed
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE:              runAbout,
}

func runAbout(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "About AISurfer Blog")
	for _, s := range aboutSections {
		fmt.Fprintf(out, "\n%s\n", s.title)
		for _, para := range s.body {
			for _, line := range wrap(para, aboutWidth) {
				fmt.Fprintln(out, line)
			}
		}
	}
	return nil
}
