package main

import (
	"fmt"
	"os"

	"gopkg.in/urfave/cli.v1"

	"github.com/andrewyi/domaincrawler/src/server"
)

func main() {

	app := cli.NewApp()

	app.Name = "crawler"
	app.Version = "0.2.0"
	app.Usage = "crawl known domains and store their page text"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config,c",
			Usage: "配置文件",
			Value: "./config.yaml",
		},
	}

	batchFlag := cli.IntFlag{
		Name:  "batch,b",
		Usage: "本次运行最多爬取的domain数量，默认使用frontier.batch_size",
	}
	domainFlag := cli.StringFlag{
		Name:  "domain,d",
		Usage: "domain，例如 example.com",
	}

	s := server.NewServer()
	app.Action = s.Start
	app.Commands = []cli.Command{
		{
			Name:   "crawl",
			Usage:  "爬取尚未记录任何页面的domain",
			Flags:  []cli.Flag{batchFlag},
			Action: s.Start,
		},
		{
			Name:   "frontier",
			Usage:  "打印下一次运行将要爬取的domain",
			Flags:  []cli.Flag{batchFlag},
			Action: s.Frontier,
		},
		{
			Name:  "import",
			Usage: "从csv导入known domains",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "csv",
					Usage: "csv文件路径",
				},
			},
			Action: s.Import,
		},
		{
			Name:   "show",
			Usage:  "打印domain已记录的页面内容",
			Flags:  []cli.Flag{domainFlag},
			Action: s.Show,
		},
		{
			Name:   "export",
			Usage:  "导出domain已记录的页面内容到storage.location",
			Flags:  []cli.Flag{domainFlag},
			Action: s.Export,
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
