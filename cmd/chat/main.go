package main

import (
	"OllamaChat/internal/adapter/chatclient"
	"OllamaChat/internal/service/image"
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
)

var (
	serverURL string
	message   string
	imagePath string
	shrink    bool
)

var urlFlag = &cli.StringFlag{
	Name:        "url",
	Usage:       "Chat endpoint URL",
	Aliases:     []string{"u"},
	Value:       "http://127.0.0.1:3000/api/chat",
	EnvVars:     []string{"CHAT_URL"},
	Destination: &serverURL,
}

var shrinkFlag = &cli.BoolFlag{
	Name:        "shrink",
	Usage:       "Downscale and re-encode images as JPEG before sending",
	Destination: &shrink,
}

// loadImage читает файл и при необходимости пережимает его.
func loadImage(path string) (*chatclient.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if shrink {
		if data, err = image.NewProcessor().Process(data); err != nil {
			return nil, fmt.Errorf("shrink %s: %w", path, err)
		}
	}
	return &chatclient.Image{Name: path, Data: data}, nil
}

var sendCommand = &cli.Command{
	Name:  "send",
	Usage: "Send one message (optionally with an image) and print the reply",
	Flags: []cli.Flag{
		urlFlag,
		shrinkFlag,
		&cli.StringFlag{
			Name:        "message",
			Usage:       "Message text",
			Aliases:     []string{"m"},
			Destination: &message,
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "image",
			Usage:       "Path to an image to attach",
			Aliases:     []string{"i"},
			Destination: &imagePath,
		},
	},
	Action: func(c *cli.Context) error {
		client := chatclient.New(serverURL, nil)
		var img *chatclient.Image
		if imagePath != "" {
			var err error
			if img, err = loadImage(imagePath); err != nil {
				return err
			}
		}
		reply, err := client.Send(c.Context, message, img)
		if err != nil {
			return err
		}
		fmt.Println(reply)
		return nil
	},
}

var replCommand = &cli.Command{
	Name:  "repl",
	Usage: "Interactive chat; prefix a line with '@path ' to attach an image",
	Flags: []cli.Flag{urlFlag, shrinkFlag},
	Action: func(c *cli.Context) error {
		client := chatclient.New(serverURL, nil)
		scanner := bufio.NewScanner(os.Stdin)
		fmt.Print("> ")
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				fmt.Print("> ")
				continue
			}
			var img *chatclient.Image
			if strings.HasPrefix(line, "@") {
				path, rest, _ := strings.Cut(line[1:], " ")
				var err error
				if img, err = loadImage(path); err != nil {
					fmt.Fprintf(os.Stderr, "error: %v\n> ", err)
					continue
				}
				line = strings.TrimSpace(rest)
			}
			reply, err := client.Send(c.Context, line, img)
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
			} else {
				fmt.Println(reply)
			}
			fmt.Print("> ")
		}
		return scanner.Err()
	},
}

func main() {
	app := &cli.App{
		Name:     "chat",
		Usage:    "Terminal client for the chat server",
		Commands: []*cli.Command{sendCommand, replCommand},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
