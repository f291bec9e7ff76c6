package main

import (
	"os"

	"github.com/urfave/cli/v2"
	arbitrage "gitlab.com/dsuarezf/crzybot/bot_arbitrage"
	marketmaker "gitlab.com/dsuarezf/crzybot/bot_marketmaker"
	"gitlab.com/dsuarezf/crzybot/helpers"
)

func main() {
	app := &cli.App{
		Name:  "crzybot",
		Usage: "algorithmic trading bots for the RIT simulator",
		Commands: []*cli.Command{
			{
				Name:  "arbitrage",
				Usage: "trade price dislocations between two listings of the same security",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "discipline",
						Usage: "execution discipline: sequential, burst or parallel",
					},
					&cli.StringFlag{
						Name:  "depth",
						Usage: "opportunity sizing: top (inside quote) or vwap (book walk)",
					},
				},
				Action: func(c *cli.Context) error {
					bot := arbitrage.Bot{}
					return bot.Run(c)
				},
			},
			{
				Name:  "marketmaker",
				Usage: "maintain two-sided limit order pairs around the inside market",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "ticker",
						Usage: "security to quote",
					},
				},
				Action: func(c *cli.Context) error {
					bot := marketmaker.Bot{}
					return bot.Run(c)
				},
			},
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		helpers.Logger.Fatalln(err.Error())
	}
}
