package main

import (
	"os"

	"github.com/urfave/cli/v2"
	"gitlab.com/aoterocom/PennyWatchBot/bot"
	"gitlab.com/aoterocom/PennyWatchBot/helpers"
)

func main() {
	pennyBot := bot.Bot{}

	app := &cli.App{
		Name:  "pennywatchbot",
		Usage: "penny stock watchlist scoring and trade decision bot",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "tickers",
				Usage: "comma separated ticker list (overrides env)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "trader",
				Usage: "run the polling trader loop",
				Action: func(c *cli.Context) error {
					return pennyBot.RunTrader(c)
				},
			},
			{
				Name:  "score",
				Usage: "run a single scoring pass and exit",
				Action: func(c *cli.Context) error {
					return pennyBot.RunScore(c)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		helpers.Logger.Fatalln(err)
	}
}
